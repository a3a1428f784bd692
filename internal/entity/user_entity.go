package entity

import "time"

// User identifiers are either derived deterministically from the credential
// triple (see service.GenerateUserID) or supplied by an external identity
// provider. Both forms are stable 64-char strings so membership joins stay
// correct regardless of origin.
type User struct {
	UserId       string
	Name         string
	Email        string
	PasswordHash *string
	Verified     bool
	CreatedAt    time.Time
}
