// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"sort"
	"strings"
)

// Domain errors.
var (
	ErrNotFound            = errors.New("not found")
	ErrNotApproved         = errors.New("account is not approved")
	ErrBadCredential       = errors.New("invalid credentials")
	ErrMismatch            = errors.New("password and confirmation do not match")
	ErrDuplicateEmail      = errors.New("email is already registered")
	ErrForbidden           = errors.New("forbidden")
	ErrConcurrencyConflict = errors.New("record was modified concurrently")
	ErrAlreadyFinalized    = errors.New("event is already confirmed")
)

// ValidationError holds per-field input problems.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field unless one is already present.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns e when it has errors and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsAuthError reports whether err is an authentication failure. Callers show
// these with one generic message.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBadCredential) ||
		errors.Is(err, ErrNotApproved)
}
