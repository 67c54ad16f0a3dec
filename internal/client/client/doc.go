// Package client contains the transport building blocks of the MaintKeeper
// client core.
//
// # Overview
//
// The package provides:
//  1. RESTClient, the single authenticated request helper used for every call
//     to the PostgREST-style remote store. It attaches the apikey and bearer
//     headers, applies the optional rate limit, decodes JSON results and maps
//     failures to the sentinel errors of package common.
//  2. The identity calls consumed by the session controller: PasswordGrant,
//     SessionUser and Logout.
//  3. Object storage for device manuals and images (RESTStorage for the
//     Supabase-style storage API, S3Storage for S3-compatible buckets).
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses become *APIError, which matches common.ErrRemoteRequestFailed
// with errors.Is and additionally common.ErrConflict (409 or PostgREST code
// 23505), common.ErrAuthenticationRequired (401) or common.ErrNotFound (404).
// Transport failures match common.ErrUnavailable.
//
// # Concurrency
//
// RESTClient and the storage implementations are safe for concurrent use.
// Calls block until the response arrives; no timeout is applied unless one is
// configured.
package client
