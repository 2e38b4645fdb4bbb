// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/mcardproject/mcard/internal/errs"
	"github.com/mcardproject/mcard/internal/model"
)

// CardModel maps the `cards` table for Bun queries. content_hash is the
// primary key, which makes the engine's unique constraint the single
// dedup mechanism for concurrent saves of identical content.
type CardModel struct {
	bun.BaseModel `bun:"table:cards"`
	ContentHash   string    `bun:"content_hash,pk"`
	Content       []byte    `bun:"content"`
	IsBinary      bool      `bun:"is_binary"`
	ClaimedAt     time.Time `bun:"claimed_at"`
}

// --- Mapping helpers (centralized conversions) ---

func cardToModel(c model.Card) CardModel {
	return CardModel{
		ContentHash: c.Hash,
		Content:     c.Content,
		IsBinary:    c.Binary,
		ClaimedAt:   c.ClaimedAt,
	}
}

func cardModelToCard(m CardModel) model.Card {
	return model.Card{
		Hash:    m.ContentHash,
		Content: m.Content,
		Binary:  m.IsBinary,
		// Engines without timezone-aware columns hand back bare local or
		// zoneless instants; re-attach UTC unconditionally.
		ClaimedAt: m.ClaimedAt.UTC(),
	}
}

// bunStore implements Store on a long-lived *bun.DB. The dialect-specific
// store types embed it; each operation runs one synchronous round-trip
// under the configured per-call timeout and returns its connection to the
// pool on every exit path.
type bunStore struct {
	bun     *bun.DB
	timeout time.Duration
}

func (s *bunStore) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Save inserts the card and reports whether a new row was created. A
// unique-constraint violation means the content already exists and is not
// an error.
func (s *bunStore) Save(card model.Card) (bool, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	m := cardToModel(card)
	_, err := s.bun.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		mapped := MapDBError(err)
		if errors.Is(mapped, ErrDuplicate) {
			return false, nil
		}
		return false, mapped
	}
	return true, nil
}

// SaveMany pre-fetches which of the batch's hashes already exist in one
// query, classifies every card against that snapshot, and inserts the
// remainder. A card losing an insert race with a concurrent writer is
// counted as skipped, mirroring the single-save contract.
func (s *bunStore) SaveMany(cards []model.Card) (inserted, skipped int, err error) {
	if len(cards) == 0 {
		return 0, 0, nil
	}
	ctx, cancel := s.opCtx()
	defer cancel()

	hashes := make([]string, 0, len(cards))
	for _, c := range cards {
		hashes = append(hashes, c.Hash)
	}

	var existing []string
	err = s.bun.NewSelect().
		Model((*CardModel)(nil)).
		Column("content_hash").
		Where("content_hash IN (?)", bun.In(hashes)).
		Scan(ctx, &existing)
	if err != nil {
		return 0, 0, MapDBError(err)
	}

	seen := make(map[string]bool, len(existing))
	for _, h := range existing {
		seen[h] = true
	}

	for _, c := range cards {
		if seen[c.Hash] {
			skipped++
			continue
		}
		m := cardToModel(c)
		if _, insErr := s.bun.NewInsert().Model(&m).Exec(ctx); insErr != nil {
			mapped := MapDBError(insErr)
			if !errors.Is(mapped, ErrDuplicate) {
				return inserted, skipped, mapped
			}
			skipped++
		} else {
			inserted++
		}
		seen[c.Hash] = true
	}
	return inserted, skipped, nil
}

// Get returns the card stored under hash, or errs.ErrNotFound.
func (s *bunStore) Get(hash string) (*model.Card, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	var m CardModel
	err := s.bun.NewSelect().Model(&m).Where("content_hash = ?", hash).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no card with hash %s", errs.ErrNotFound, hash)
		}
		return nil, MapDBError(err)
	}
	card := cardModelToCard(m)
	return &card, nil
}

// GetAll returns every stored card, most recently claimed first.
func (s *bunStore) GetAll() ([]model.Card, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	var ms []CardModel
	err := s.bun.NewSelect().Model(&ms).
		OrderExpr("claimed_at DESC, content_hash ASC").
		Scan(ctx)
	if err != nil {
		return nil, MapDBError(err)
	}
	cards := make([]model.Card, 0, len(ms))
	for _, m := range ms {
		cards = append(cards, cardModelToCard(m))
	}
	return cards, nil
}

// Delete removes the row for hash and reports whether one existed. An
// unknown hash is a clean false, never an engine error.
func (s *bunStore) Delete(hash string) (bool, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	res, err := s.bun.NewDelete().
		Model((*CardModel)(nil)).
		Where("content_hash = ?", hash).
		Exec(ctx)
	if err != nil {
		return false, MapDBError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, MapDBError(err)
	}
	return rows > 0, nil
}

// Count returns the number of stored cards.
func (s *bunStore) Count() (int, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	n, err := s.bun.NewSelect().Model((*CardModel)(nil)).Count(ctx)
	if err != nil {
		return 0, MapDBError(err)
	}
	return n, nil
}

// Close releases the underlying connection pool.
func (s *bunStore) Close() error {
	return s.bun.Close()
}
