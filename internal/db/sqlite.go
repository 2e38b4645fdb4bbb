// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the persistence layer for mcard.
// This file contains the SQLite implementation of the Store interface.
package db // import "github.com/mcardproject/mcard/internal/db"

import (
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SqliteStore is the SQLite implementation of the Store interface. All
// operations run through the shared Bun helpers; SQLite stores timestamps
// as zoneless text, which the mapping layer re-attaches as UTC on read.
type SqliteStore struct {
	bunStore
}

var _ Store = (*SqliteStore)(nil)
