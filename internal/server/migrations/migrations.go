// Package migrations embeds the goose SQL migrations of every service.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed auth/*.sql profiles/*.sql teams/*.sql
var Migrations embed.FS

// For returns the migrations of service rooted at ".".
func For(service string) (fs.FS, error) {
	sub, err := fs.Sub(Migrations, service)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("no migrations for service %q: %w", service, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no migrations for service %q", service)
	}
	return sub, nil
}
