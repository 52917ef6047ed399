// Package repository implements the data access layer over database/sql.
// This file defines sentinel errors shared across repositories so that
// handlers can map failures onto HTTP status codes with errors.Is
// instead of string matching.  ErrForbidden indicates the caller does
// not own the resource it tries to mutate, ErrConflict that a
// compare-and-set transition lost (wrong current status, or a book
// whose availability already changed), ErrValidation that a required
// argument was missing or malformed before any store access happened.
package repository

import "errors"

// ErrValidation is returned when a required argument is absent or
// malformed.  Handlers translate it into HTTP 400.
var ErrValidation = errors.New("validation failed")

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a state transition or availability flip
// cannot proceed because the current state differs from the expected
// one.  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrBookNotFound is returned when no book with the given id exists.
var ErrBookNotFound = errors.New("book not found")

// ErrLoanNotFound is returned when no loan with the given id exists.
var ErrLoanNotFound = errors.New("loan not found")

// ErrEmailExists is returned when registering an email that is already
// taken.  Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
