package domain

import "time"

// User is the domain model for account holders. Accounts start
// unverified and cannot log in until the verification flag is set.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
