// Package models defines the records persisted by the tracker.
package models

import "time"

// User is an account. The email address itself is never stored: EmailHash
// is a salted one-way hash of the lowercased address and EmailHint a short
// display form such as "a***@example.com".
type User struct {
	ID           int64
	Username     string
	EmailHash    string
	EmailHint    string
	PasswordHash string
	CreatedAt    time.Time
}

// Public returns a copy of u with the secret hashes cleared, suitable for
// handing to templates.
func (u User) Public() User {
	u.EmailHash = ""
	u.PasswordHash = ""
	return u
}
