package storage

import "time"

// User is an account able to obtain access tokens.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
