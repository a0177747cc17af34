// Package db provides the embedded database schema and the seed fixtures
// used by memory mode and the seed-db tool.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts is the product catalog fixture (JSON array).
//
//go:embed seed/products.json
var SeedProducts []byte

// SeedCustomers is the customer registry fixture (JSON array).
//
//go:embed seed/customers.json
var SeedCustomers []byte
