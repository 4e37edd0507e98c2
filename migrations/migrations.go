// Package migrations embeds the schema so the server and the integration
// test containers provision the same tables.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Schema returns the initial schema DDL.
func Schema() (string, error) {
	b, err := FS.ReadFile("0001_init.up.sql")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
