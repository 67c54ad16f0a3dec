package session

import (
	"context"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
)

// Authenticator performs the provider side of a session.
type Authenticator interface {
	// SignIn verifies the credentials, persists the credential and returns
	// the resolved user.
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	// SignOut revokes the persisted credential at the provider.
	SignOut(ctx context.Context) error
	// Resume returns the user of the persisted session, or nil when there is
	// none.
	Resume(ctx context.Context) (*models.User, error)
	// Lookup resolves the user with the given provider id.
	Lookup(ctx context.Context, userID string) (*models.User, error)
}

// TokenStore is the part of the token store used by sessions.
type TokenStore interface {
	Save(ctx context.Context, b models.TokenBundle) error
	Bundle(ctx context.Context) (*models.TokenBundle, error)
	GetValidToken(ctx context.Context) (string, error)
	OnExpired(fn func())
}

// Navigator sends the user to the login entry point.
type Navigator interface {
	ToLogin(ctx context.Context)
}

type NavigatorFunc func(ctx context.Context)

func (f NavigatorFunc) ToLogin(ctx context.Context) { f(ctx) }
