// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// Name is the login identity and is unique — enforced both by a pre-insert
// check (so signup can show a friendly "User already exists" error) and by a
// UNIQUE constraint in the database, which is authoritative under concurrent
// signups.
//
// Password holds the salted digest in "salt,digest" form, never the
// plaintext. See internal/auth.PasswordService for the format.
//
// WHY Email string (not *string)?
// The email field is optional on the signup form. We use an empty string as
// the zero value rather than a nullable pointer — simpler to work with and
// safe to display.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Password  string    `json:"-"` // salted digest, never serialized
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
