// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db owns the relational record store.

Open connects with either driver and CreateSchema is safe to call on every
start. Store runs the same SQL against SQLite and PostgreSQL.

# Tables

  - ballot: one per state and county
  - measure: ordered by sort_order within a ballot; impact_formula holds the
    formula set as JSON in declaration order
  - user_profile: one civic profile per user

# Seed Data

Seed loads seed.yaml (embedded) and is idempotent.
*/
package db
