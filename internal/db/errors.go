// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db contains shared database errors and helpers.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mcardproject/mcard/internal/errs"
)

// ErrDuplicate is returned when attempting to insert a record that already
// exists. For the cards table this is the expected outcome of the second of
// two racing saves of identical content, not a failure.
var ErrDuplicate = errors.New("duplicate record")

// MapDBError inspects low-level driver errors and maps common classes to
// package-level sentinels. The mapping is a conservative string match so
// this package does not import driver error types.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry (1062), Postgres unique violation (23505),
	// SQLite unique constraint.
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(le, "timeout") || strings.Contains(le, "timed out") ||
		strings.Contains(le, "connection refused") || strings.Contains(le, "database is locked") {
		return fmt.Errorf("%w: %v", errs.ErrResource, err)
	}
	return err
}
