package domain

import "time"

// User represents a registered account. School, FirstName and BirthCity
// double as the account-recovery challenge answers.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsLoggedIn   bool
	School       string
	FirstName    string
	BirthCity    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
