// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup exports and restores the card table as zstd-compressed
// JSON. Restores run through the store's batch save, so importing a dump
// into a non-empty database deduplicates instead of erroring.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/mcardproject/mcard/internal/db"
	"github.com/mcardproject/mcard/internal/logging"
	"github.com/mcardproject/mcard/internal/model"
)

// FormatVersion identifies the dump layout for forward compatibility.
const FormatVersion = 1

// Dump is the serialized form of a full export.
type Dump struct {
	Version    int         `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Cards      []DumpEntry `json:"cards"`
}

// DumpEntry is one card in a dump. Content is raw bytes; encoding/json
// base64-encodes it on the wire.
type DumpEntry struct {
	Hash      string    `json:"hash"`
	Content   []byte    `json:"content"`
	Binary    bool      `json:"binary"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// Export writes every card in the store to w as zstd-compressed JSON.
// It returns the number of cards exported.
func Export(store db.Store, w io.Writer) (int, error) {
	cards, err := store.GetAll()
	if err != nil {
		return 0, err
	}

	dump := Dump{Version: FormatVersion, ExportedAt: time.Now().UTC()}
	for _, c := range cards {
		dump.Cards = append(dump.Cards, DumpEntry{
			Hash:      c.Hash,
			Content:   c.Content,
			Binary:    c.Binary,
			ClaimedAt: c.ClaimedAt,
		})
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return 0, fmt.Errorf("failed to open zstd writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(dump); err != nil {
		_ = zw.Close()
		return 0, fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish backup stream: %w", err)
	}
	logging.Debugf("backup: exported %d cards", len(dump.Cards))
	return len(dump.Cards), nil
}

// Import reads a dump from r and saves its cards into the store. Cards
// whose content is already present count as skipped.
func Import(store db.Store, r io.Reader) (inserted, skipped int, err error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open zstd reader: %w", err)
	}
	defer zr.Close()

	var dump Dump
	if err := json.NewDecoder(zr).Decode(&dump); err != nil {
		return 0, 0, fmt.Errorf("failed to decode backup: %w", err)
	}
	if dump.Version != FormatVersion {
		return 0, 0, fmt.Errorf("unsupported backup format version %d", dump.Version)
	}

	cards := make([]model.Card, 0, len(dump.Cards))
	for _, e := range dump.Cards {
		cards = append(cards, model.Card{
			Hash:      e.Hash,
			Content:   e.Content,
			Binary:    e.Binary,
			ClaimedAt: e.ClaimedAt.UTC(),
		})
	}
	inserted, skipped, err = store.SaveMany(cards)
	if err == nil {
		logging.Debugf("backup: imported %d cards, skipped %d", inserted, skipped)
	}
	return inserted, skipped, err
}
