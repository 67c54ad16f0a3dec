package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. Handlers get the
// words following the command.
type execIface interface {
	isLoggedIn() bool
	report(ctx context.Context, err error)

	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Language(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error

	Devices(ctx context.Context, args []string) error
	ShowDevice(ctx context.Context, args []string) error
	AddDevice(ctx context.Context, args []string) error
	SetStatus(ctx context.Context, args []string) error
	Inspect(ctx context.Context, args []string) error
	DeleteDevice(ctx context.Context, args []string) error
	UploadManual(ctx context.Context, args []string) error
	UploadImage(ctx context.Context, args []string) error

	Parts(ctx context.Context, args []string) error
	AddPart(ctx context.Context, args []string) error
	Quantity(ctx context.Context, args []string) error
	LastChange(ctx context.Context, args []string) error
	DeletePart(ctx context.Context, args []string) error

	Logs(ctx context.Context, args []string) error
	AddLog(ctx context.Context, args []string) error
	DeleteLog(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: login, lang, exit"
	helpSignedIn  = `Available commands:
  refresh                          reload everything from the server
  devices | device <id>            list devices | show one device
  adddevice                        create a device
  status <id> <status>             operational, maintenance or offline
  inspect <id> <YYYY-MM-DD> <years> record an electrical inspection
  manual <id> <file> | image <id> <file>
  deldevice <id>
  parts | addpart | delpart <id>
  qty <id> <+n|-n|n> [notes]       change stock
  lastchange <id>                  newest stock change of a part
  logs | addlog | dellog <id>
  whoami, lang [en|sk|de], logout, exit`
)

// runREPL reads commands from reader until EOF or "exit". Commands other
// than login, lang, help and exit need a signed-in user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "mk %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpSignedIn)
			} else {
				fmt.Fprintln(w, helpAnonymous)
			}
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		case "login":
			a.report(ctx, a.Login(ctx, args))
			continue
		case "lang":
			a.report(ctx, a.Language(ctx, args))
			continue
		}

		if !a.isLoggedIn() {
			fmt.Fprintln(w, "Please log in first (type 'login').")
			continue
		}

		var handler func(context.Context, []string) error
		switch cmd {
		case "logout":
			handler = a.Logout
		case "whoami":
			handler = a.WhoAmI
		case "refresh":
			handler = a.Refresh
		case "devices":
			handler = a.Devices
		case "device":
			handler = a.ShowDevice
		case "adddevice":
			handler = a.AddDevice
		case "status":
			handler = a.SetStatus
		case "inspect":
			handler = a.Inspect
		case "deldevice":
			handler = a.DeleteDevice
		case "manual":
			handler = a.UploadManual
		case "image":
			handler = a.UploadImage
		case "parts":
			handler = a.Parts
		case "addpart":
			handler = a.AddPart
		case "qty":
			handler = a.Quantity
		case "lastchange":
			handler = a.LastChange
		case "delpart":
			handler = a.DeletePart
		case "logs":
			handler = a.Logs
		case "addlog":
			handler = a.AddLog
		case "dellog":
			handler = a.DeleteLog
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}
		a.report(ctx, handler(ctx, args))
	}
}
