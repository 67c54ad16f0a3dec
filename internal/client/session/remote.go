package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/client"
	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/dmitrijs2005/maintkeeper/internal/logging"
)

// Identity is the identity API together with the request helper used for
// profile lookups.
type Identity interface {
	PasswordGrant(ctx context.Context, email, password string) (*client.AuthSession, error)
	SessionUser(ctx context.Context, token string) (*client.AuthUser, error)
	Logout(ctx context.Context, token string) error
	Do(ctx context.Context, req client.Request) error
}

// RemoteAuthenticator signs in against the identity API and resolves the
// role from the users table.
type RemoteAuthenticator struct {
	id     Identity
	tokens TokenStore
	log    logging.Logger
	now    func() time.Time
}

var _ Authenticator = (*RemoteAuthenticator)(nil)

func NewRemoteAuthenticator(id Identity, tokens TokenStore, log logging.Logger, now func() time.Time) *RemoteAuthenticator {
	if log == nil {
		log = logging.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &RemoteAuthenticator{id: id, tokens: tokens, log: log, now: now}
}

type profileRow struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (a *RemoteAuthenticator) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	s, err := a.id.PasswordGrant(ctx, email, password)
	if err != nil {
		return nil, err
	}

	expiresAt := s.ExpiresAt
	if expiresAt == 0 && s.ExpiresIn > 0 {
		expiresAt = a.now().Add(time.Duration(s.ExpiresIn) * time.Second).Unix()
	}
	err = a.tokens.Save(ctx, models.TokenBundle{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}

	return a.resolve(ctx, s.AccessToken, s.User), nil
}

func (a *RemoteAuthenticator) SignOut(ctx context.Context) error {
	b, err := a.tokens.Bundle(ctx)
	if err != nil || b == nil {
		return err
	}
	return a.id.Logout(ctx, b.AccessToken)
}

// Resume asks the provider for the owner of a still valid credential. A
// credential the provider no longer accepts yields no user.
func (a *RemoteAuthenticator) Resume(ctx context.Context) (*models.User, error) {
	tok, err := a.tokens.GetValidToken(ctx)
	if err != nil || tok == "" {
		return nil, err
	}
	au, err := a.id.SessionUser(ctx, tok)
	if err != nil {
		if errors.Is(err, common.ErrAuthenticationRequired) {
			a.log.Info(ctx, "persisted session rejected by provider")
			return nil, nil
		}
		return nil, fmt.Errorf("session user: %w", err)
	}
	return a.resolve(ctx, tok, *au), nil
}

func (a *RemoteAuthenticator) Lookup(ctx context.Context, userID string) (*models.User, error) {
	tok, err := a.tokens.GetValidToken(ctx)
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, common.ErrAuthenticationRequired
	}
	u, err := a.profile(ctx, tok, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	return u, nil
}

// resolve prefers the profile row, then the role in the provider metadata,
// then the technician role. Lookup failures only fall through.
func (a *RemoteAuthenticator) resolve(ctx context.Context, token string, au client.AuthUser) *models.User {
	u, err := a.profile(ctx, token, au.ID)
	if err != nil {
		a.log.Warn(ctx, "profile lookup failed, using provider metadata", "user_id", au.ID, "error", err)
	}
	if u != nil {
		return u
	}

	role := models.Role(au.MetadataRole())
	if !role.Valid() {
		role = models.RoleTechnician
	}
	return &models.User{ID: au.ID, Email: au.Email, Role: role}
}

func (a *RemoteAuthenticator) profile(ctx context.Context, token, userID string) (*models.User, error) {
	var rows []profileRow
	err := a.id.Do(ctx, client.Request{
		Path:   client.TablePath(common.TableUsers),
		Query:  url.Values{"id": {client.EqFilter(userID)}},
		Token:  token,
		Result: &rows,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	role := models.Role(rows[0].Role)
	if !role.Valid() {
		role = models.RoleTechnician
	}
	return &models.User{ID: rows[0].ID, Email: rows[0].Email, Role: role}, nil
}
