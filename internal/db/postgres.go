// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the PostgreSQL implementation of the Store interface.
package db

import (
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// PostgresStore is the PostgreSQL implementation of the Store interface.
// TIMESTAMPTZ columns keep the zone, so reads are already UTC-correct.
type PostgresStore struct {
	bunStore
}

var _ Store = (*PostgresStore)(nil)
