package domain

import "time"

// User is one record of the credential store.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
