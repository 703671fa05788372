package models

import "time"

// RefreshToken is a server-side session record. Token is an opaque random
// string handed to the browser in a cookie.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
