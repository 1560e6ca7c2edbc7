package repository

import _ "embed"

// Schema is the DDL for every pipeline table, applied by `pipeline migrate`.
//
//go:embed schema.sql
var Schema string
