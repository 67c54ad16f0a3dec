// Package common contains shared constants and sentinel errors used across
// MaintKeeper components.
package common

// Header names sent with every request to the remote store.
const (
	APIKeyHeaderName        = "apikey"
	AuthorizationHeaderName = "Authorization"
	PreferHeaderName        = "Prefer"

	// PreferReturnRepresentation asks PostgREST to echo written rows back.
	PreferReturnRepresentation = "return=representation"
)

// Keys of the persisted local state.
const (
	MetadataKeyCurrentUser = "current_user"
	MetadataKeyAuthToken   = "auth_token"
	MetadataKeyLanguage    = "language"
)

// Remote table names.
const (
	TableUsers           = "users"
	TableDevices         = "devices"
	TableSpareParts      = "spare_parts"
	TableSparePartsHist  = "spare_parts_history"
	TableMaintenanceLogs = "maintenance_logs"
)

// UnknownActor is recorded as the author of history entries when no session
// user is known.
const UnknownActor = "unknown"
