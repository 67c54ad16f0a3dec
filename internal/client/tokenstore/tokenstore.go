// Package tokenstore persists the session credential and decides whether it
// is still usable.
package tokenstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/dmitrijs2005/maintkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ExpirySkew is the safety margin before expires_at within which a token
	// is already considered expired.
	ExpirySkew = 60 * time.Second
	// ExpiryNotifyDelay postpones the expiry notification.
	ExpiryNotifyDelay = 100 * time.Millisecond
)

// Store keeps the credential under common.MetadataKeyAuthToken. It is safe
// for concurrent use.
type Store struct {
	repo metadata.Repository
	log  logging.Logger
	now  func() time.Time

	notifyDelay time.Duration

	mu        sync.Mutex
	onExpired func()
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithNotifyDelay replaces ExpiryNotifyDelay.
func WithNotifyDelay(d time.Duration) Option {
	return func(s *Store) { s.notifyDelay = d }
}

// New returns a Store backed by repo. A nil log discards output.
func New(repo metadata.Repository, log logging.Logger, opts ...Option) *Store {
	if log == nil {
		log = logging.Nop()
	}
	s := &Store{repo: repo, log: log, now: time.Now, notifyDelay: ExpiryNotifyDelay}
	for _, o := range opts {
		o(s)
	}
	return s
}

// OnExpired registers the callback run after an expired credential was purged.
func (s *Store) OnExpired(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpired = fn
}

// Save replaces the persisted credential with b.
func (s *Store) Save(ctx context.Context, b models.TokenBundle) error {
	return metadata.SetJSON(ctx, s.repo, common.MetadataKeyAuthToken, b)
}

// Clear removes the credential. Other metadata is left in place.
func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, common.MetadataKeyAuthToken)
}

// Bundle returns the persisted credential, or nil when there is none. A
// corrupted record is purged and reported as absent.
func (s *Store) Bundle(ctx context.Context) (*models.TokenBundle, error) {
	raw, err := s.repo.Get(ctx, common.MetadataKeyAuthToken)
	if err != nil || raw == nil {
		return nil, err
	}

	var b models.TokenBundle
	if err := json.Unmarshal(raw, &b); err != nil {
		s.log.Warn(ctx, "discarding unreadable credential", "error", err)
		return nil, s.Clear(ctx)
	}
	if b.AccessToken == "" {
		return nil, nil
	}
	return &b, nil
}

// GetValidToken returns the access token if it outlives now+ExpirySkew. With
// no credential it returns "" and nil. An expired credential is purged, the
// expiry callback is scheduled and common.ErrSessionExpired is returned.
func (s *Store) GetValidToken(ctx context.Context) (string, error) {
	b, err := s.Bundle(ctx)
	if err != nil || b == nil {
		return "", err
	}

	exp := expiry(*b)
	if exp.IsZero() || exp.After(s.now().Add(ExpirySkew)) {
		return b.AccessToken, nil
	}

	s.log.Info(ctx, "session credential expired", "expires_at", exp.Unix())
	if err := s.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to purge expired credential", "error", err)
	}
	s.scheduleExpired()
	return "", common.ErrSessionExpired
}

func (s *Store) scheduleExpired() {
	s.mu.Lock()
	fn := s.onExpired
	s.mu.Unlock()
	if fn == nil {
		return
	}
	time.AfterFunc(s.notifyDelay, fn)
}

// expiry prefers expires_at and falls back to the exp claim of the token.
func expiry(b models.TokenBundle) time.Time {
	if b.ExpiresAt > 0 {
		return b.ExpiryTime()
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(b.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
