package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/maintkeeper/internal/client/notify"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Login prompts for credentials, signs in and loads the data.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.session.Login(ctx, email, string(password))
	clear(password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", u.Email, u.Role)
	return a.Refresh(ctx, nil)
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) WhoAmI(context.Context, []string) error {
	u := a.session.CurrentUser()
	if u == nil {
		return common.ErrAuthenticationRequired
	}
	fmt.Fprintf(a.out, "%s\t%s\tid=%s\tadmin=%t\n", u.Email, u.Role, u.ID, a.session.IsAdmin())
	return nil
}

// Language shows or sets the notification language.
func (a *App) Language(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, a.language(ctx))
		return nil
	}
	if a.prefs == nil {
		return fmt.Errorf("%w: language preferences are not available", common.ErrValidation)
	}
	if err := a.prefs.SetLanguage(ctx, notify.Language(args[0])); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Language set to", args[0])
	return nil
}

// Refresh reloads every collection. The collections are loaded even when an
// earlier one fails.
func (a *App) Refresh(ctx context.Context, _ []string) error {
	devices, derr := a.backend.LoadDevices(ctx)
	parts, perr := a.backend.LoadParts(ctx)
	logs, lerr := a.backend.LoadMaintenanceLogs(ctx)
	for _, err := range []error{derr, perr, lerr} {
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "Loaded %d devices, %d spare parts, %d maintenance logs\n", len(devices), len(parts), len(logs))
	return nil
}
