// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package errs defines the sentinel errors shared across the mcard core.
// Callers classify failures with errors.Is against these four kinds; the
// store and configuration layers wrap them with context but never swallow
// them.
package errs

import "errors"

// ErrValidation indicates a malformed value: a bad hash string, or a config
// field that is present but unparseable.
var ErrValidation = errors.New("validation error")

// ErrConfiguration indicates an unusable configuration: an unknown or
// unresolved hash algorithm, or a lifecycle misuse such as configuring twice.
var ErrConfiguration = errors.New("configuration error")

// ErrNotFound indicates a lookup for a content hash that has no stored row.
var ErrNotFound = errors.New("not found")

// ErrResource indicates the backing engine was unavailable or timed out.
var ErrResource = errors.New("resource error")
