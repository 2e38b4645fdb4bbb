// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package backup

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/mcardproject/mcard/internal/db"
	"github.com/mcardproject/mcard/internal/hashing"
	"github.com/mcardproject/mcard/internal/logging"
	"github.com/mcardproject/mcard/internal/model"
)

func newStore(t *testing.T, name string) db.Store {
	t.Helper()
	s, err := db.NewStoreFromDSN("sqlite", "file:test_backup_"+t.Name()+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := newStore(t, "_src")
	dst := newStore(t, "_dst")
	scheme, err := hashing.Resolve("sha256")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	text, _ := model.NewText(scheme, "backed up text")
	binary, _ := model.New(scheme, []byte{0x00, 0x01, 0x02})
	for _, c := range []model.Card{text, binary} {
		if _, err := src.Save(c); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	var buf bytes.Buffer
	n, err := Export(src, &buf)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Export count = %d, want 2", n)
	}

	inserted, skipped, err := Import(dst, &buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if inserted != 2 || skipped != 0 {
		t.Errorf("Import = (inserted=%d, skipped=%d), want (2, 0)", inserted, skipped)
	}

	got, err := dst.Get(binary.Hash)
	if err != nil {
		t.Fatalf("Get after import failed: %v", err)
	}
	if !bytes.Equal(got.Content, binary.Content) || !got.Binary {
		t.Errorf("binary card not restored faithfully: %+v", got)
	}
}

func TestImport_Deduplicates(t *testing.T) {
	src := newStore(t, "_src")
	scheme, err := hashing.Resolve("sha256")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	card, _ := model.NewText(scheme, "already there")
	if _, err := src.Save(card); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var buf bytes.Buffer
	if _, err := Export(src, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Importing into the same store skips everything.
	inserted, skipped, err := Import(src, &buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if inserted != 0 || skipped != 1 {
		t.Errorf("Import = (inserted=%d, skipped=%d), want (0, 1)", inserted, skipped)
	}
}

func TestExport_DebugDiagnostics(t *testing.T) {
	src := newStore(t, "_src")
	scheme, err := hashing.Resolve("sha256")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	card, _ := model.NewText(scheme, "logged on export")
	if _, err := src.Save(card); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var captured bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&captured)
	logging.SetDebug(true)
	t.Cleanup(func() {
		logging.SetDebug(false)
		log.SetOutput(prev)
	})

	var buf bytes.Buffer
	if _, err := Export(src, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(captured.String(), "exported 1 cards") {
		t.Errorf("debug log missing export count, got %q", captured.String())
	}
}

func TestImport_Garbage(t *testing.T) {
	dst := newStore(t, "_dst")
	if _, _, err := Import(dst, bytes.NewReader([]byte("not a zstd stream"))); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}
