// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mcardproject/mcard/internal/errs"
	"github.com/mcardproject/mcard/internal/hashing"
)

func sha256Scheme(t *testing.T) hashing.Scheme {
	t.Helper()
	s, err := hashing.Resolve("sha256")
	if err != nil {
		t.Fatalf("Resolve(sha256) failed: %v", err)
	}
	return s
}

func TestNew_ComputesHashFromContent(t *testing.T) {
	scheme := sha256Scheme(t)
	a, err := New(scheme, []byte("same content"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b, err := New(scheme, []byte("same content"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Hash != b.Hash {
		t.Errorf("identical content produced different hashes: %s vs %s", a.Hash, b.Hash)
	}
	if a.Hash != scheme.Sum([]byte("same content")) {
		t.Errorf("hash does not match scheme digest")
	}
	if !a.Binary {
		t.Errorf("New should mark content binary")
	}
}

func TestNewText_TracksKind(t *testing.T) {
	scheme := sha256Scheme(t)
	c, err := NewText(scheme, "hello world")
	if err != nil {
		t.Fatalf("NewText failed: %v", err)
	}
	if c.Binary {
		t.Errorf("NewText should not mark content binary")
	}
	if c.Text() != "hello world" {
		t.Errorf("Text() = %q, want %q", c.Text(), "hello world")
	}
	// Text and binary constructions over the same bytes share identity.
	b, _ := New(scheme, []byte("hello world"))
	if b.Hash != c.Hash {
		t.Errorf("content kind leaked into identity: %s vs %s", b.Hash, c.Hash)
	}
}

func TestNew_ExplicitHashValidated(t *testing.T) {
	scheme := sha256Scheme(t)
	valid := scheme.Sum([]byte("data"))

	c, err := New(scheme, []byte("data"), WithHash(strings.ToUpper(valid)))
	if err != nil {
		t.Fatalf("New with valid explicit hash failed: %v", err)
	}
	if c.Hash != valid {
		t.Errorf("explicit hash not normalized: %s", c.Hash)
	}

	for _, bad := range []string{"", "abc", strings.Repeat("z", 64)} {
		if _, err := New(scheme, []byte("data"), WithHash(bad)); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("WithHash(%q): expected ErrValidation, got %v", bad, err)
		}
	}
}

func TestNew_TimestampAlwaysUTC(t *testing.T) {
	scheme := sha256Scheme(t)

	c, err := New(scheme, []byte("a"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.ClaimedAt.Location() != time.UTC {
		t.Errorf("default timestamp not UTC: %v", c.ClaimedAt.Location())
	}

	berlin := time.FixedZone("CET", 3600)
	local := time.Date(2026, 3, 1, 12, 0, 0, 0, berlin)
	c, err = New(scheme, []byte("a"), WithClaimedAt(local))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.ClaimedAt.Location() != time.UTC {
		t.Errorf("explicit timestamp not coerced to UTC: %v", c.ClaimedAt.Location())
	}
	if !c.ClaimedAt.Equal(local) {
		t.Errorf("UTC coercion changed the instant: %v vs %v", c.ClaimedAt, local)
	}
}

func TestCard_BinaryContentRoundTrip(t *testing.T) {
	scheme := sha256Scheme(t)
	raw := []byte{0x00, 0x01}
	c, err := New(scheme, raw)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !bytes.Equal(c.Content, raw) {
		t.Errorf("content altered during construction: %v", c.Content)
	}
	if !c.Binary {
		t.Errorf("binary flag lost")
	}
}
