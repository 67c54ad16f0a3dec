package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/maintkeeper/internal/client/backend"
	"github.com/dmitrijs2005/maintkeeper/internal/client/mirror"
	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/client/notify"
	"github.com/dmitrijs2005/maintkeeper/internal/logging"
)

// Session is the part of the session controller used by the CLI.
type Session interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser() *models.User
	IsAuthenticated() bool
	IsAdmin() bool
}

// Deps are the collaborators of an App.
type Deps struct {
	Backend     backend.DataBackend
	Store       *mirror.Store
	Session     Session
	Preferences *notify.Preferences
	Logger      logging.Logger
	Offline     bool

	In  io.Reader
	Out io.Writer
}

type App struct {
	backend backend.DataBackend
	store   *mirror.Store
	session Session
	prefs   *notify.Preferences
	log     logging.Logger
	offline bool

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(d Deps) *App {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	return &App{
		backend: d.Backend,
		store:   d.Store,
		session: d.Session,
		prefs:   d.Preferences,
		log:     d.Logger,
		offline: d.Offline,
		reader:  bufio.NewReader(d.In),
		out:     d.Out,
	}
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to MaintKeeper CLI (type 'help' for commands)")
	if a.session.IsAuthenticated() {
		a.report(ctx, a.Refresh(ctx, nil))
	}
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) status() string {
	mode := "online"
	if a.offline {
		mode = "offline"
	}
	if u := a.session.CurrentUser(); u != nil {
		return fmt.Sprintf("(%s %s %s)", u.Email, u.Role, mode)
	}
	return fmt.Sprintf("(%s)", mode)
}

func (a *App) language(ctx context.Context) notify.Language {
	if a.prefs == nil {
		return notify.DefaultLanguage
	}
	l, err := a.prefs.Language(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to read language", "error", err)
	}
	return l
}

// report prints the notification for err, if any.
func (a *App) report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	a.log.Debug(ctx, "command failed", "error", err)
	fmt.Fprintf(a.out, "! %s (%v)\n", notify.Message(a.language(ctx), err), err)
}
