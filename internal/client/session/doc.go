// Package session owns the sign-in lifecycle of the client.
//
// A Controller moves between the Anonymous, Authenticating and Authenticated
// states. The provider side of a sign-in is delegated to an Authenticator,
// chosen once at startup: OfflineAuthenticator mints a local token without
// network I/O, RemoteAuthenticator talks to the identity API.
//
// External sign-in and sign-out notifications are consumed with
// Controller.Watch; NATSEventSource produces them from a NATS subject.
package session
