package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/dmitrijs2005/maintkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// MockTokenTTL is the validity of tokens minted offline.
const MockTokenTTL = 24 * time.Hour

var mockSigningKey = []byte("maintkeeper-offline")

// OfflineAuthenticator signs users in from the email alone. Addresses
// containing "admin" get the admin role.
type OfflineAuthenticator struct {
	tokens TokenStore
	repo   metadata.Repository
	log    logging.Logger
	now    func() time.Time
}

var _ Authenticator = (*OfflineAuthenticator)(nil)

func NewOfflineAuthenticator(tokens TokenStore, repo metadata.Repository, log logging.Logger, now func() time.Time) *OfflineAuthenticator {
	if log == nil {
		log = logging.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &OfflineAuthenticator{tokens: tokens, repo: repo, log: log, now: now}
}

func (a *OfflineAuthenticator) SignIn(ctx context.Context, email, _ string) (*models.User, error) {
	u := &models.User{ID: "2", Email: email, Role: models.RoleTechnician}
	if strings.Contains(email, "admin") {
		u.ID, u.Role = "1", models.RoleAdmin
	}

	issued := a.now()
	tok, err := MintMockToken(*u, issued)
	if err != nil {
		return nil, err
	}
	err = a.tokens.Save(ctx, models.TokenBundle{
		AccessToken: tok,
		ExpiresAt:   issued.Add(MockTokenTTL).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return u, nil
}

func (a *OfflineAuthenticator) SignOut(context.Context) error { return nil }

// Resume rehydrates the persisted user. An unreadable record clears all
// persisted auth state.
func (a *OfflineAuthenticator) Resume(ctx context.Context) (*models.User, error) {
	var u models.User
	ok, err := metadata.GetJSON(ctx, a.repo, common.MetadataKeyCurrentUser, &u)
	if err != nil {
		a.log.Error(ctx, "discarding unreadable persisted user", "error", err)
		if derr := a.repo.DeleteKeys(ctx, common.MetadataKeyCurrentUser, common.MetadataKeyAuthToken); derr != nil {
			return nil, derr
		}
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (a *OfflineAuthenticator) Lookup(ctx context.Context, userID string) (*models.User, error) {
	u, err := a.Resume(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil || u.ID != userID {
		return nil, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	return u, nil
}

// MintMockToken returns an HS256 token for u valid for MockTokenTTL.
func MintMockToken(u models.User, issued time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"role":  string(u.Role),
		"iat":   issued.Unix(),
		"exp":   issued.Add(MockTokenTTL).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(mockSigningKey)
	if err != nil {
		return "", fmt.Errorf("sign mock token: %w", err)
	}
	return tok, nil
}
