package domain

import "time"

// User is the domain model for people who submit tickets. Email is
// unique across the table; the password is stored only as a bcrypt hash.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
