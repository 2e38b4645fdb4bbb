// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package hashing resolves algorithm identifiers to pure digest functions.
// A digest is always rendered as lowercase hex; for a fixed algorithm the
// same input bytes yield the same digest across calls and process restarts,
// which is the correctness foundation for content addressing.
package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mcardproject/mcard/internal/errs"
)

// DigestFunc computes a raw digest over content bytes.
type DigestFunc func(data []byte) []byte

// Scheme is a resolved hashing algorithm: a digest function plus the hex
// length its output is rendered (and validated) at.
type Scheme struct {
	Algorithm string
	HexLength int
	digest    DigestFunc
}

// standard maps the supported built-in algorithm identifiers to their
// digest functions and hex output lengths.
var standard = map[string]struct {
	hexLen int
	fn     DigestFunc
}{
	"md5":    {32, func(b []byte) []byte { s := md5.Sum(b); return s[:] }},
	"sha1":   {40, func(b []byte) []byte { s := sha1.Sum(b); return s[:] }},
	"sha224": {56, func(b []byte) []byte { s := sha256.Sum224(b); return s[:] }},
	"sha256": {64, func(b []byte) []byte { s := sha256.Sum256(b); return s[:] }},
	"sha384": {96, func(b []byte) []byte { s := sha512.Sum384(b); return s[:] }},
	"sha512": {128, func(b []byte) []byte { s := sha512.Sum512(b); return s[:] }},
}

// custom is the registry for user-provided digest functions, keyed by
// "module.function". It replaces runtime symbol lookup with explicit
// startup-time registration.
var custom = map[string]DigestFunc{}

// Register installs a custom digest function under a module and function
// name. Later registrations for the same pair replace earlier ones.
func Register(module, function string, fn DigestFunc) {
	custom[module+"."+function] = fn
}

// IsStandard reports whether algorithm names one of the built-in digests.
func IsStandard(algorithm string) bool {
	_, ok := standard[algorithm]
	return ok
}

// Resolve returns the Scheme for a standard algorithm identifier. Unknown
// identifiers fail with a configuration error.
func Resolve(algorithm string) (Scheme, error) {
	std, ok := standard[algorithm]
	if !ok {
		return Scheme{}, fmt.Errorf("%w: unsupported hash algorithm %q", errs.ErrConfiguration, algorithm)
	}
	return Scheme{Algorithm: algorithm, HexLength: std.hexLen, digest: std.fn}, nil
}

// ResolveCustom returns the Scheme for a registered custom digest. Both the
// module and function names must be present, and the pair must have been
// registered; failures name the missing or unresolved part. When hexLength
// is non-nil the rendered digest is truncated to that many hex characters.
func ResolveCustom(module, function string, hexLength *int) (Scheme, error) {
	if strings.TrimSpace(module) == "" {
		return Scheme{}, fmt.Errorf("%w: custom hash requires a module name", errs.ErrConfiguration)
	}
	if strings.TrimSpace(function) == "" {
		return Scheme{}, fmt.Errorf("%w: custom hash requires a function name", errs.ErrConfiguration)
	}
	key := module + "." + function
	fn, ok := custom[key]
	if !ok {
		return Scheme{}, fmt.Errorf("%w: custom hash function %q is not registered", errs.ErrConfiguration, key)
	}
	s := Scheme{Algorithm: "custom", digest: fn}
	if hexLength != nil {
		s.HexLength = *hexLength
	} else {
		// Length of the untruncated output, probed once so validation has
		// a fixed expectation.
		s.HexLength = hex.EncodedLen(len(fn(nil)))
	}
	return s, nil
}

// Sum digests content and renders it as lowercase hex, truncated to the
// scheme's hex length when the raw output is longer.
func (s Scheme) Sum(data []byte) string {
	h := hex.EncodeToString(s.digest(data))
	if s.HexLength > 0 && len(h) > s.HexLength {
		h = h[:s.HexLength]
	}
	return h
}

// ValidateHash checks an externally supplied hash against the scheme's
// expected hex length and alphabet and returns it normalized to lowercase.
func (s Scheme) ValidateHash(h string) (string, error) {
	if len(h) != s.HexLength {
		return "", fmt.Errorf("%w: hash must be %d hex characters, got %d", errs.ErrValidation, s.HexLength, len(h))
	}
	norm := strings.ToLower(h)
	for _, r := range norm {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", fmt.Errorf("%w: hash contains non-hex character %q", errs.ErrValidation, r)
		}
	}
	return norm, nil
}
