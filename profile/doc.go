// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package profile projects civic profiles into memory records and back, and
// persists them to both the memory provider and the record store. The record
// store is authoritative: memory failures are logged, never returned.
package profile
