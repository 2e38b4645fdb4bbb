// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config resolves and validates the engine, storage and hashing
// parameters for a process. A Provider moves between exactly two states:
// unconfigured, and holding one immutable Snapshot committed by a single
// validated Configure call. Reset discards the snapshot; there is no
// in-place reconfiguration, so an open store can never silently observe a
// parameter change.
package config

import (
	"fmt"
	"time"

	"github.com/mcardproject/mcard/internal/errs"
	"github.com/mcardproject/mcard/internal/hashing"
)

// Mode selects the environment the defaults are chosen for. It is always
// set explicitly by the caller, never inferred.
type Mode string

const (
	ModeProduction Mode = "production"
	ModeTest       Mode = "test"
)

// HashingSettings is the validated hashing portion of a snapshot.
type HashingSettings struct {
	Algorithm      string
	CustomModule   string
	CustomFunction string
	// CustomLength truncates custom digests to this many hex characters.
	// nil means no truncation.
	CustomLength *int
}

// Snapshot is the validated, immutable parameter set active for a process
// lifetime. The resolved hashing scheme is carried alongside the raw
// settings so resolution failures surface at configure time, not first use.
type Snapshot struct {
	Mode           Mode
	Engine         string
	DBPath         string
	MaxConnections int
	Timeout        time.Duration
	Hashing        HashingSettings
	Scheme         hashing.Scheme
}

// Provider owns the configure-once lifecycle. The zero value is an
// unconfigured provider ready for use. Configure and Reset are not safe
// against concurrent invocation; callers mutating configuration mid-run
// must serialize externally.
type Provider struct {
	snapshot *Snapshot
}

// Configure loads raw settings from source, validates and normalizes them,
// and commits the result as the active snapshot. It fails with a
// configuration error when already configured; Reset first.
func (p *Provider) Configure(source Source) (*Snapshot, error) {
	if p.snapshot != nil {
		return nil, fmt.Errorf("%w: already configured", errs.ErrConfiguration)
	}
	raw, err := source.Load()
	if err != nil {
		return nil, err
	}
	snap, err := validate(raw)
	if err != nil {
		return nil, err
	}
	p.snapshot = snap
	return snap, nil
}

// Reset discards the active snapshot and returns the provider to its
// unconfigured state. Calling Reset on an unconfigured provider is a no-op.
func (p *Provider) Reset() {
	p.snapshot = nil
}

// IsConfigured reports whether a snapshot is active.
func (p *Provider) IsConfigured() bool {
	return p.snapshot != nil
}

// Active returns the active snapshot, or a configuration error when
// Configure has not been called.
func (p *Provider) Active() (*Snapshot, error) {
	if p.snapshot == nil {
		return nil, fmt.Errorf("%w: not configured", errs.ErrConfiguration)
	}
	return p.snapshot, nil
}

// defaultProvider backs the package-level helpers for callers that treat
// configuration as process state. Tests and embedding callers construct
// their own Provider instead.
var defaultProvider Provider

// Configure configures the package-level provider.
func Configure(source Source) (*Snapshot, error) {
	return defaultProvider.Configure(source)
}

// Reset resets the package-level provider.
func Reset() {
	defaultProvider.Reset()
}

// Active returns the package-level provider's snapshot.
func Active() (*Snapshot, error) {
	return defaultProvider.Active()
}
