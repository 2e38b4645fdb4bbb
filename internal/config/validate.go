// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mcardproject/mcard/internal/errs"
	"github.com/mcardproject/mcard/internal/hashing"
)

// Documented defaults. A field that is entirely unset falls back to these;
// the same field present but malformed always raises instead.
const (
	defaultEngine                   = "sqlite"
	defaultDBPathProduction         = "data/mcard.db"
	defaultDBPathTest               = "data/test_mcard.db"
	defaultMaxConnectionsProduction = 10
	defaultMaxConnectionsTest       = 5
	defaultTimeoutSeconds           = 30.0
	defaultAlgorithm                = "sha256"
)

var supportedEngines = map[string]bool{
	"sqlite":   true,
	"postgres": true,
	"mysql":    true,
}

// validate applies the shared validation rules to raw settings from any
// source and produces a snapshot. All checks run here, eagerly, including
// resolution of the hashing scheme.
func validate(raw Raw) (*Snapshot, error) {
	mode := raw.Mode
	if mode != ModeProduction && mode != ModeTest {
		return nil, fmt.Errorf("%w: unknown configuration mode %q", errs.ErrConfiguration, mode)
	}

	values := raw.Values
	if forceDefaults(values) {
		values = map[string]string{}
	}

	snap := &Snapshot{Mode: mode}

	// Engine.
	if v, ok := values[KeyDBEngine]; ok {
		engine := strings.ToLower(strings.TrimSpace(v))
		if !supportedEngines[engine] {
			return nil, fmt.Errorf("%w: unsupported database engine %q", errs.ErrValidation, v)
		}
		snap.Engine = engine
	} else {
		snap.Engine = defaultEngine
	}

	// Database path / DSN.
	if v, ok := values[KeyDBPath]; ok && v != "" {
		snap.DBPath = normalizeDBPath(snap.Engine, v)
	} else if mode == ModeTest {
		snap.DBPath = defaultDBPathTest
	} else {
		snap.DBPath = defaultDBPathProduction
	}

	// Connection pool size.
	if v, ok := values[KeyMaxConnections]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: max_connections must be an integer, got %q", errs.ErrValidation, v)
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: max_connections must be positive, got %d", errs.ErrValidation, n)
		}
		snap.MaxConnections = n
	} else if mode == ModeTest {
		snap.MaxConnections = defaultMaxConnectionsTest
	} else {
		snap.MaxConnections = defaultMaxConnectionsProduction
	}

	// Per-call timeout.
	seconds := defaultTimeoutSeconds
	if v, ok := values[KeyTimeout]; ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: timeout must be a number, got %q", errs.ErrValidation, v)
		}
		if f <= 0 {
			return nil, fmt.Errorf("%w: timeout must be positive, got %v", errs.ErrValidation, f)
		}
		seconds = f
	}
	snap.Timeout = time.Duration(seconds * float64(time.Second))

	// Hashing settings.
	h, err := validateHashing(values)
	if err != nil {
		return nil, err
	}
	snap.Hashing = h

	// Resolve the scheme now so an unknown algorithm or unregistered
	// custom function fails at configure time, never at first use.
	if h.Algorithm == "custom" {
		snap.Scheme, err = hashing.ResolveCustom(h.CustomModule, h.CustomFunction, h.CustomLength)
	} else {
		snap.Scheme, err = hashing.Resolve(h.Algorithm)
	}
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// validateHashing applies the hashing rows of the validation table.
func validateHashing(values map[string]string) (HashingSettings, error) {
	var h HashingSettings

	// Custom length is checked whenever the key is present, even when the
	// algorithm falls back to its default: a blank string is explicitly
	// invalid, not treated as absent.
	var customLength *int
	if lv, ok := values[KeyHashCustomLength]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(lv))
		if err != nil {
			return h, fmt.Errorf("%w: custom hash length must be an integer, got %q", errs.ErrValidation, lv)
		}
		if n <= 0 {
			return h, fmt.Errorf("%w: custom hash length must be positive, got %d", errs.ErrValidation, n)
		}
		customLength = &n
	}

	v, ok := values[KeyHashAlgorithm]
	if !ok {
		// Default algorithm clears any custom fields.
		h.Algorithm = defaultAlgorithm
		return h, nil
	}

	algorithm := strings.ToLower(strings.TrimSpace(v))
	if algorithm != "custom" && !hashing.IsStandard(algorithm) {
		return h, fmt.Errorf("%w: unsupported hash algorithm %q", errs.ErrValidation, v)
	}
	h.Algorithm = algorithm

	if algorithm == "custom" {
		if strings.TrimSpace(values[KeyHashCustomModule]) == "" {
			return h, fmt.Errorf("%w: custom hash requires %s", errs.ErrConfiguration, EnvVar(KeyHashCustomModule))
		}
		if strings.TrimSpace(values[KeyHashCustomFunction]) == "" {
			return h, fmt.Errorf("%w: custom hash requires %s", errs.ErrConfiguration, EnvVar(KeyHashCustomFunction))
		}
		h.CustomModule = strings.TrimSpace(values[KeyHashCustomModule])
		h.CustomFunction = strings.TrimSpace(values[KeyHashCustomFunction])
	}

	h.CustomLength = customLength

	return h, nil
}

// forceDefaults reports whether the force-default flag is set truthy,
// which discards all file and environment overrides.
func forceDefaults(values map[string]string) bool {
	v, ok := values[KeyForceDefault]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// normalizeDBPath rewrites an absolute sqlite path relative to the
// discovered project root when the path lies under it; otherwise the path
// is kept as given. Non-sqlite engines treat the value as an opaque DSN.
func normalizeDBPath(engine, p string) string {
	if engine != "sqlite" {
		return p
	}
	if p == ":memory:" || strings.HasPrefix(p, "file:") || !filepath.IsAbs(p) {
		return p
	}
	root, ok := discoverRoot()
	if !ok {
		return p
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

// discoverRoot walks upward from the working directory looking for a
// project marker (go.mod or .git).
func discoverRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		for _, marker := range []string{"go.mod", ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
