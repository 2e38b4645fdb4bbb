// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mcardproject/mcard/internal/db"
	"github.com/mcardproject/mcard/internal/errs"
	"github.com/mcardproject/mcard/internal/hashing"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := db.NewStoreFromDSN("sqlite", "file:test_api_"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	scheme, err := hashing.Resolve("sha256")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return NewService(store, scheme)
}

func TestCreateFetchRoundTrip(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateText("wire content")
	if err != nil {
		t.Fatalf("CreateText failed: %v", err)
	}
	if created.Hash == "" || created.Content != "wire content" {
		t.Errorf("unexpected create response: %+v", created)
	}
	if _, err := time.Parse(time.RFC3339, created.Timestamp); err != nil {
		t.Errorf("timestamp %q not RFC3339: %v", created.Timestamp, err)
	}

	fetched, err := svc.Fetch(created.Hash)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fetched.Content != created.Content || fetched.Hash != created.Hash {
		t.Errorf("fetch mismatch: %+v vs %+v", fetched, created)
	}

	// The wire form must marshal with the documented field names.
	raw, err := json.Marshal(fetched)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, field := range []string{"hash", "content", "timestamp"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("wire form missing field %q", field)
		}
	}
}

func TestCreate_BinaryBase64(t *testing.T) {
	svc := newTestService(t)

	raw := []byte{0x00, 0x01, 0xff}
	created, err := svc.Create(raw)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created.Binary {
		t.Errorf("binary flag not set")
	}
	decoded, err := base64.StdEncoding.DecodeString(created.Content)
	if err != nil {
		t.Fatalf("content not base64: %v", err)
	}
	if len(decoded) != 3 || decoded[0] != 0x00 || decoded[2] != 0xff {
		t.Errorf("binary content mangled: %v", decoded)
	}
}

func TestCreate_IdempotentByHash(t *testing.T) {
	svc := newTestService(t)

	a, err := svc.CreateText("repeat")
	if err != nil {
		t.Fatalf("CreateText failed: %v", err)
	}
	b, err := svc.CreateText("repeat")
	if err != nil {
		t.Fatalf("repeat CreateText failed: %v", err)
	}
	if a.Hash != b.Hash {
		t.Errorf("repeat create changed identity: %s vs %s", a.Hash, b.Hash)
	}
	if !a.Created {
		t.Errorf("first create not marked as inserted")
	}
	if b.Created {
		t.Errorf("repeat create marked as inserted")
	}

	list, err := svc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List count = %d, want 1", len(list))
	}
}

func TestFetchAndDelete_NotFound(t *testing.T) {
	svc := newTestService(t)
	unknown := "0000000000000000000000000000000000000000000000000000000000000000"

	if _, err := svc.Fetch(unknown); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("Fetch: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Delete(unknown); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.CreateText("short lived")
	if err != nil {
		t.Fatalf("CreateText failed: %v", err)
	}

	resp, err := svc.Delete(created.Hash)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !resp.Deleted || resp.Hash != created.Hash {
		t.Errorf("unexpected delete response: %+v", resp)
	}
}

type fakeClassifier struct{}

func (fakeClassifier) Classify(content []byte) (string, string) {
	return "text/plain", ".txt"
}

type fakeDetector struct{}

func (fakeDetector) Detect(content []byte) []LanguageGuess {
	return []LanguageGuess{{Language: "en", Probability: 0.99}}
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(content []byte, mimeType, language string) (string, error) {
	return "a short note", nil
}

func TestDescribe_WithCollaborators(t *testing.T) {
	svc := newTestService(t).WithCollaborators(fakeClassifier{}, fakeDetector{}, fakeSummarizer{})

	created, err := svc.CreateText("describe me")
	if err != nil {
		t.Fatalf("CreateText failed: %v", err)
	}

	desc, err := svc.Describe(created.Hash)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if desc.MIMEType != "text/plain" || desc.Summary != "a short note" {
		t.Errorf("enrichment missing: %+v", desc)
	}
	if len(desc.Languages) != 1 || desc.Languages[0].Language != "en" {
		t.Errorf("language guesses missing: %+v", desc.Languages)
	}
}

func TestDescribe_WithoutCollaborators(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.CreateText("plain")
	if err != nil {
		t.Fatalf("CreateText failed: %v", err)
	}
	desc, err := svc.Describe(created.Hash)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if desc.MIMEType != "" || desc.Summary != "" || desc.Languages != nil {
		t.Errorf("unexpected enrichment without collaborators: %+v", desc)
	}
}
