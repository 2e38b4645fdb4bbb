// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package api is the JSON surface the core exposes to routing layers. It
// translates between wire representations and the store; it contains no
// routing or transport of its own.
package api

import (
	"encoding/base64"
	"fmt"

	"github.com/mcardproject/mcard/internal/db"
	"github.com/mcardproject/mcard/internal/errs"
	"github.com/mcardproject/mcard/internal/hashing"
	"github.com/mcardproject/mcard/internal/model"
)

// CardResponse is the wire form of a card. Binary content travels base64
// encoded with the flag set so the caller can reverse it. Created stays off
// the wire: identical content always resolves to the same card, but callers
// presenting results may still want to say whether this call inserted it.
type CardResponse struct {
	Hash      string `json:"hash"`
	Content   string `json:"content"`
	Binary    bool   `json:"binary,omitempty"`
	Timestamp string `json:"timestamp"`
	Created   bool   `json:"-"`
}

// DeleteResponse is the wire acknowledgement for a delete.
type DeleteResponse struct {
	Hash    string `json:"hash"`
	Deleted bool   `json:"deleted"`
}

// Service binds a store and the active hashing scheme into the four wire
// operations. Collaborators, when present, only enrich responses; no core
// invariant depends on them.
type Service struct {
	store  db.Store
	scheme hashing.Scheme

	classifier TypeClassifier
	detector   LanguageDetector
	summarizer Summarizer
}

// NewService returns a service over the given store and scheme.
func NewService(store db.Store, scheme hashing.Scheme) *Service {
	return &Service{store: store, scheme: scheme}
}

// WithCollaborators installs the optional enrichment collaborators.
func (s *Service) WithCollaborators(c TypeClassifier, d LanguageDetector, m Summarizer) *Service {
	s.classifier = c
	s.detector = d
	s.summarizer = m
	return s
}

// CreateText stores text content and returns its wire form. Storing
// content that already exists returns the existing identity; creation is
// idempotent by hash.
func (s *Service) CreateText(content string) (CardResponse, error) {
	card, err := model.NewText(s.scheme, content)
	if err != nil {
		return CardResponse{}, err
	}
	return s.create(card)
}

// Create stores binary content and returns its wire form.
func (s *Service) Create(content []byte) (CardResponse, error) {
	card, err := model.New(s.scheme, content)
	if err != nil {
		return CardResponse{}, err
	}
	return s.create(card)
}

func (s *Service) create(card model.Card) (CardResponse, error) {
	inserted, err := s.store.Save(card)
	if err != nil {
		return CardResponse{}, err
	}
	resp := toResponse(card)
	resp.Created = inserted
	return resp, nil
}

// Fetch returns the wire form of the card stored under hash, or
// errs.ErrNotFound.
func (s *Service) Fetch(hash string) (CardResponse, error) {
	card, err := s.store.Get(hash)
	if err != nil {
		return CardResponse{}, err
	}
	return toResponse(*card), nil
}

// List returns the wire form of every stored card. Pagination is applied
// by external collaborators.
func (s *Service) List() ([]CardResponse, error) {
	cards, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toResponse(c))
	}
	return out, nil
}

// Delete removes the card stored under hash. Unknown hashes fail with
// errs.ErrNotFound so routing layers can map them to their not-found shape.
func (s *Service) Delete(hash string) (DeleteResponse, error) {
	ok, err := s.store.Delete(hash)
	if err != nil {
		return DeleteResponse{}, err
	}
	if !ok {
		return DeleteResponse{}, fmt.Errorf("%w: no card with hash %s", errs.ErrNotFound, hash)
	}
	return DeleteResponse{Hash: hash, Deleted: true}, nil
}

func toResponse(c model.Card) CardResponse {
	content := string(c.Content)
	if c.Binary {
		content = base64.StdEncoding.EncodeToString(c.Content)
	}
	return CardResponse{
		Hash:      c.Hash,
		Content:   content,
		Binary:    c.Binary,
		Timestamp: c.ClaimedAt.Format("2006-01-02T15:04:05.999999Z07:00"),
	}
}
