// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the core entity of mcard: the Card, an immutable
// content + hash + timestamp record. A card's identity is entirely its
// content hash; the claim timestamp is incidental and never part of
// identity. Mutation means constructing a new card.
package model

import (
	"fmt"
	"time"

	"github.com/mcardproject/mcard/internal/hashing"
)

// Card binds content to its deterministic digest. The Binary flag records
// whether Content originated as raw bytes or as text so storage can
// round-trip either representation losslessly.
type Card struct {
	Hash      string
	Content   []byte
	Binary    bool
	ClaimedAt time.Time
}

// Option adjusts card construction. Options that carry invalid values
// surface their error from New/NewText.
type Option func(*cardParams)

type cardParams struct {
	explicitHash string
	hasHash      bool
	claimedAt    time.Time
	hasTime      bool
}

// WithHash supplies an externally computed hash instead of digesting the
// content. The value is validated against the active scheme's hex length
// and alphabet and normalized to lowercase; it is never accepted unchecked.
func WithHash(h string) Option {
	return func(p *cardParams) {
		p.explicitHash = h
		p.hasHash = true
	}
}

// WithClaimedAt supplies an explicit claim timestamp. It is coerced to UTC
// rather than rejected, so a stored card never carries a bare local time.
func WithClaimedAt(t time.Time) Option {
	return func(p *cardParams) {
		p.claimedAt = t
		p.hasTime = true
	}
}

// New constructs a card over binary content, computing the hash with the
// given scheme unless an explicit one was supplied via WithHash.
func New(scheme hashing.Scheme, content []byte, opts ...Option) (Card, error) {
	return build(scheme, content, true, opts)
}

// NewText constructs a card over text content. The bytes stored are the
// UTF-8 encoding of the string; the binary flag stays false so retrieval
// restores it as text.
func NewText(scheme hashing.Scheme, content string, opts ...Option) (Card, error) {
	return build(scheme, []byte(content), false, opts)
}

func build(scheme hashing.Scheme, content []byte, binary bool, opts []Option) (Card, error) {
	var p cardParams
	for _, opt := range opts {
		opt(&p)
	}

	var hash string
	if p.hasHash {
		norm, err := scheme.ValidateHash(p.explicitHash)
		if err != nil {
			return Card{}, err
		}
		hash = norm
	} else {
		hash = scheme.Sum(content)
	}

	claimed := time.Now().UTC()
	if p.hasTime {
		claimed = p.claimedAt.UTC()
	}

	return Card{
		Hash:      hash,
		Content:   content,
		Binary:    binary,
		ClaimedAt: claimed,
	}, nil
}

// Text returns the content as a string. Meaningful when Binary is false.
func (c Card) Text() string {
	return string(c.Content)
}

// String returns a short identification suitable for logs.
func (c Card) String() string {
	h := c.Hash
	if len(h) > 12 {
		h = h[:12]
	}
	return fmt.Sprintf("card %s (%d bytes)", h, len(c.Content))
}
