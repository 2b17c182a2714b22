// Package migrations embebe el esquema Postgres y lo aplica con goose.
package migrations

import "embed"

// FS contiene los archivos *.sql con anotaciones goose.
//
//go:embed *.sql
var FS embed.FS
