// Package model defines the data structures used throughout the application.
package model

// User represents an account that can be managed through the /users endpoints.
//
// WHY Password *string?
// The password column is nullable and, more importantly, the value must never
// leak into API responses. A pointer lets us distinguish "not set" (nil) from
// "set to empty" and lets Redacted() drop it before serialization.
type User struct {
	ID       int64   `json:"id"       db:"id"`
	Name     string  `json:"name"     db:"name"`
	Email    string  `json:"email"    db:"email"`
	Password *string `json:"password,omitempty" db:"password"`
}

// Redacted returns a copy of the user safe to write to API responses:
// identical in every field except the password, which is always dropped.
// Handlers call this on every outbound user; the repository still
// round-trips the password so internal callers can read it.
func (u User) Redacted() User {
	u.Password = nil
	return u
}
