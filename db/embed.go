// Package db carries the storefront's SQL schema, embedded so migrations
// run from the binary without shipping loose files.
package db

import _ "embed"

// Schema holds the DDL for the products and store_entries tables. Statements
// are idempotent so re-running them is safe.
//
//go:embed migrations/001_schema.sql
var Schema string
