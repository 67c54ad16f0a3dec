package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/dmitrijs2005/maintkeeper/internal/logging"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Snapshot is the observable session state.
type Snapshot struct {
	State State
	User  *models.User
}

// Controller tracks who is signed in.
type Controller struct {
	auth   Authenticator
	repo   metadata.Repository
	nav    Navigator
	log    logging.Logger

	mu    sync.Mutex
	state State
	user  *models.User
	// redirected is set once a redirect was issued and reset on sign-in.
	redirected bool

	subMu  sync.Mutex
	subs   map[int]chan Snapshot
	nextID int
}

// Config holds the collaborators of a Controller.
type Config struct {
	Auth      Authenticator
	Tokens    TokenStore
	Metadata  metadata.Repository
	Navigator Navigator
	Logger    logging.Logger
}

// NewController wires the controller to the token store's expiry notice.
func NewController(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Navigator == nil {
		cfg.Navigator = NavigatorFunc(func(context.Context) {})
	}
	c := &Controller{
		auth: cfg.Auth,
		repo: cfg.Metadata,
		nav:  cfg.Navigator,
		log:  cfg.Logger.With("component", "session"),
		subs: map[int]chan Snapshot{},
	}
	if cfg.Tokens != nil {
		cfg.Tokens.OnExpired(c.expired)
	}
	return c
}

func (c *Controller) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	c.set(Authenticating, nil)

	u, err := c.auth.SignIn(ctx, email, password)
	if err != nil {
		c.log.Warn(ctx, "login failed", "email", email, "error", err)
		c.set(Anonymous, nil)
		return nil, err
	}
	c.persist(ctx, u)

	c.mu.Lock()
	c.redirected = false
	c.mu.Unlock()
	c.set(Authenticated, u)
	c.log.Info(ctx, "signed in", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Logout always ends the local session. Provider failures are only logged.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.auth.SignOut(ctx); err != nil {
		c.log.Warn(ctx, "provider logout failed", "error", err)
	}

	err := c.repo.DeleteKeys(ctx, common.MetadataKeyAuthToken, common.MetadataKeyCurrentUser)
	c.set(Anonymous, nil)
	c.redirect(ctx)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Restore resumes a persisted session at startup.
func (c *Controller) Restore(ctx context.Context) (*models.User, error) {
	u, err := c.auth.Resume(ctx)
	if err != nil {
		c.log.Warn(ctx, "failed to restore session", "error", err)
		c.set(Anonymous, nil)
		return nil, err
	}
	if u == nil {
		c.set(Anonymous, nil)
		return nil, nil
	}
	c.persist(ctx, u)

	c.mu.Lock()
	c.redirected = false
	c.mu.Unlock()
	c.set(Authenticated, u)
	return u, nil
}

// Watch applies external session events until ctx is done or events is
// closed.
func (c *Controller) Watch(ctx context.Context, events <-chan AuthEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.apply(ctx, ev)
		}
	}
}

func (c *Controller) apply(ctx context.Context, ev AuthEvent) {
	switch ev.Type {
	case EventSignedIn:
		u, err := c.auth.Lookup(ctx, ev.UserID)
		if err != nil {
			c.log.Error(ctx, "failed to load profile for external sign-in", "user_id", ev.UserID, "error", err)
			return
		}
		c.persist(ctx, u)
		c.mu.Lock()
		c.redirected = false
		c.mu.Unlock()
		c.set(Authenticated, u)
	case EventSignedOut:
		c.set(Anonymous, nil)
	default:
		c.log.Debug(ctx, "ignoring session event", "type", ev.Type)
	}
}

// expired runs after the token store purged an expired credential.
func (c *Controller) expired() {
	ctx := context.Background()
	c.log.Info(ctx, "session expired")
	if err := c.repo.Delete(ctx, common.MetadataKeyCurrentUser); err != nil {
		c.log.Error(ctx, "failed to clear persisted user", "error", err)
	}
	c.set(Anonymous, nil)
	c.redirect(ctx)
}

func (c *Controller) persist(ctx context.Context, u *models.User) {
	if err := metadata.SetJSON(ctx, c.repo, common.MetadataKeyCurrentUser, u); err != nil {
		c.log.Error(ctx, "failed to persist user", "error", err)
	}
}

func (c *Controller) redirect(ctx context.Context) {
	c.mu.Lock()
	if c.redirected {
		c.mu.Unlock()
		return
	}
	c.redirected = true
	c.mu.Unlock()
	c.nav.ToLogin(ctx)
}

func (c *Controller) set(s State, u *models.User) {
	c.mu.Lock()
	c.state = s
	c.user = u
	c.publish(c.snapshotLocked())
	c.mu.Unlock()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.state}
	if c.user != nil {
		u := *c.user
		snap.User = &u
	}
	return snap
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) State() State {
	return c.Snapshot().State
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (c *Controller) CurrentUser() *models.User {
	return c.Snapshot().User
}

func (c *Controller) IsAuthenticated() bool {
	return c.State() == Authenticated
}

func (c *Controller) IsAdmin() bool {
	u := c.CurrentUser()
	return u != nil && u.Role == models.RoleAdmin
}

// Subscribe returns a channel holding the latest snapshot after each change.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
			close(ch)
		})
	}
}

func (c *Controller) publish(snap Snapshot) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
