// Package cli provides the interactive MaintKeeper command-line client.
//
// The REPL drives the session controller and the data backend: sign in and
// out, browse and edit devices, spare parts and maintenance logs, upload
// manuals and images. Errors are shown as localized notifications.
//
// The REPL is started with App.Run(ctx), which blocks until the user exits.
package cli
