package models

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTechnician
}

// User is the signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// TokenBundle is the persisted session credential. ExpiresAt is in Unix
// seconds; zero means the provider did not report one.
type TokenBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// ExpiryTime returns ExpiresAt as a time.Time, or the zero time.
func (b TokenBundle) ExpiryTime() time.Time {
	if b.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(b.ExpiresAt, 0)
}
