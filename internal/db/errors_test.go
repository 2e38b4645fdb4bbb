// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"testing"

	"github.com/mcardproject/mcard/internal/errs"
)

func TestMapDBError(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Errorf("nil should map to nil")
	}

	duplicates := []string{
		"UNIQUE constraint failed: cards.content_hash",
		"ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)",
		"Error 1062: Duplicate entry 'abc' for key 'PRIMARY'",
	}
	for _, msg := range duplicates {
		if got := MapDBError(errors.New(msg)); !errors.Is(got, ErrDuplicate) {
			t.Errorf("%q: expected ErrDuplicate, got %v", msg, got)
		}
	}

	resourceFailures := []string{
		"dial tcp 127.0.0.1:5432: connect: connection refused",
		"context deadline exceeded (timeout)",
		"database is locked",
	}
	for _, msg := range resourceFailures {
		if got := MapDBError(errors.New(msg)); !errors.Is(got, errs.ErrResource) {
			t.Errorf("%q: expected ErrResource, got %v", msg, got)
		}
	}

	other := errors.New("syntax error near SELECT")
	if got := MapDBError(other); got != other {
		t.Errorf("unrelated errors must pass through unchanged, got %v", got)
	}
}
