// Package credentials owns the secret-bearing fields of a user record: the
// salted email and password hashes and the email display hint.
//
// Emails are lowercased before hashing and before checking, so lookups are
// case-insensitive. Passwords are hashed verbatim. Hashes are salted per
// call, which means a stored email hash can only be checked, never looked
// up: finding the owner of an address requires checking every user.
package credentials

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/tasktracker/internal/cryptox"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

// Store hashes and verifies user secrets.
type Store struct {
	hasher *cryptox.Hasher
}

func NewStore(hasher *cryptox.Hasher) *Store {
	return &Store{hasher: hasher}
}

// HashSecret returns a salted one-way hash of secret.
func (s *Store) HashSecret(secret string) (string, error) {
	return s.hasher.Hash(secret)
}

// VerifySecret reports whether secret produced hash.
func (s *Store) VerifySecret(secret, hash string) bool {
	return cryptox.Verify(secret, hash)
}

// SetEmail replaces the user's email hash and hint.
func (s *Store) SetEmail(u *models.User, email string) error {
	hash, err := s.HashSecret(strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("hash email: %w", err)
	}
	u.EmailHash = hash
	u.EmailHint = EmailHint(email)
	return nil
}

// CheckEmail reports whether candidate, compared case-insensitively, is the
// address the user's email hash was set from.
func (s *Store) CheckEmail(u *models.User, candidate string) bool {
	return s.VerifySecret(strings.ToLower(candidate), u.EmailHash)
}

// SetPassword replaces the user's password hash.
func (s *Store) SetPassword(u *models.User, password string) error {
	hash, err := s.HashSecret(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return nil
}

func (s *Store) CheckPassword(u *models.User, password string) bool {
	return s.VerifySecret(password, u.PasswordHash)
}

// EmailHint masks an address for display:
//
//	alice@example.com -> a***@example.com
//	a@example.com     -> ***@example.com
//	noatsign          -> ***
//
// An address with more than one "@" is treated like one without.
func EmailHint(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***"
	}
	local, domain := parts[0], parts[1]
	if utf8.RuneCountInString(local) > 1 {
		first, _ := utf8.DecodeRuneInString(local)
		return string(first) + "***@" + domain
	}
	return "***@" + domain
}
