package auth

import "time"

// Account represents a platform user account as stored in postgres.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	KYCStatus    string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
