// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"github.com/mcardproject/mcard/internal/model"
)

// Store defines the persistence operations for cards. The table is keyed
// by content_hash, so identical content collapses to one row regardless of
// how many times or from how many callers it is saved.
type Store interface {
	// Save inserts the card unless a row with its hash already exists.
	// It reports whether a new row was inserted; saving identical content
	// a second time is a no-op, not an error.
	Save(card model.Card) (bool, error)

	// SaveMany classifies the batch against one pre-fetched snapshot of
	// existing hashes and inserts the remainder. It never issues one
	// existence check per card.
	SaveMany(cards []model.Card) (inserted, skipped int, err error)

	// Get returns the card for a hash, restoring its content kind and a
	// UTC timestamp. Unknown hashes fail with errs.ErrNotFound.
	Get(hash string) (*model.Card, error)

	// GetAll returns every stored card. Pagination, if any, is applied by
	// callers.
	GetAll() ([]model.Card, error)

	// Delete removes the row for a hash, reporting whether one existed.
	Delete(hash string) (bool, error)

	// Count returns the number of stored cards.
	Count() (int, error)

	// Close releases the underlying connection pool.
	Close() error
}
