// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the MySQL implementation of the Store interface.
package db

import (
	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLStore is the MySQL implementation of the Store interface. MySQL
// TIMESTAMP columns drop the zone; the mapping layer re-attaches UTC on
// read, so DSNs should set parseTime=true&loc=UTC.
type MySQLStore struct {
	bunStore
}

var _ Store = (*MySQLStore)(nil)
