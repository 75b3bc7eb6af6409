// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow the handler layer to map
// failures onto HTTP statuses without inspecting driver error strings.
package repository

import "errors"

// ErrNotFound is returned when a lookup by id matches no row, or when an
// update/delete affects zero rows.  Handlers translate this into 404.
var ErrNotFound = errors.New("not found")

// ErrUserExists is returned when a registration collides with an existing
// username or email.  Handlers translate this into 409.
var ErrUserExists = errors.New("username or email already exists")
