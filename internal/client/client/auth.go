package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

// AuthUser is the identity provider's view of a user.
type AuthUser struct {
	ID              string         `json:"id"`
	Email           string         `json:"email"`
	UserMetadata    map[string]any `json:"user_metadata"`
	RawUserMetaData map[string]any `json:"raw_user_meta_data"`
}

// MetadataRole returns the role from user_metadata, then raw_user_meta_data.
func (u AuthUser) MetadataRole() string {
	for _, md := range []map[string]any{u.UserMetadata, u.RawUserMetaData} {
		if r, ok := md["role"].(string); ok && r != "" {
			return r
		}
	}
	return ""
}

// AuthSession is the result of a successful password grant.
type AuthSession struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresAt    int64    `json:"expires_at"`
	ExpiresIn    int64    `json:"expires_in"`
	User         AuthUser `json:"user"`
}

// PasswordGrant exchanges credentials for a session.
func (c *RESTClient) PasswordGrant(ctx context.Context, email, password string) (*AuthSession, error) {
	var s AuthSession
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   authPrefix + "token",
		Query:  url.Values{"grant_type": {"password"}},
		Body:   map[string]string{"email": email, "password": password},
		Result: &s,
	})
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %s", common.ErrInvalidCredentials, apiErr.Message)
		}
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, fmt.Errorf("password grant: %w", common.ErrEmptyResponse)
	}
	return &s, nil
}

// SessionUser returns the user owning token.
func (c *RESTClient) SessionUser(ctx context.Context, token string) (*AuthUser, error) {
	var u AuthUser
	err := c.Do(ctx, Request{Path: authPrefix + "user", Token: token, Result: &u})
	if err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, fmt.Errorf("session user: %w", common.ErrEmptyResponse)
	}
	return &u, nil
}

// Logout revokes token at the provider. A 401 means the session is already gone.
func (c *RESTClient) Logout(ctx context.Context, token string) error {
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: authPrefix + "logout", Token: token})
	if errors.Is(err, common.ErrAuthenticationRequired) {
		return nil
	}
	return err
}
