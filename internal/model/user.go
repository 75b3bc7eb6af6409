package model

import "time"

// User represents an account in the `users` table.  Accounts are created
// once at registration and read back during login; the API never updates
// or deletes them.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login handle.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password; the plain password is never stored.
//  Name         – optional display name (empty when the column is NULL).
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Name         string    // users.name
	CreatedAt    time.Time // users.created_at
}
