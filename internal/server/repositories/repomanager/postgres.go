// Package repomanager provides the PostgreSQL RepositoryManager and runs the
// embedded goose migrations of a service.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/server/migrations"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/accounts"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/marketconfigs"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/memberships"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/profiles"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/teams"
)

// DriverName is the database/sql driver registered by pgx/stdlib.
const DriverName = "pgx"

// PostgresRepositoryManager vends PostgreSQL repositories. Migrations holds
// the goose files of the owning service.
type PostgresRepositoryManager struct {
	migrations fs.FS
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Teams(db dbx.DBTX) teams.Repository {
	return teams.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Memberships(db dbx.DBTX) memberships.Repository {
	return memberships.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) MarketConfigs(db dbx.DBTX) marketconfigs.Repository {
	return marketconfigs.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the service migrations with goose.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(m.migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// NewPostgresRepositoryManager builds the manager of service ("auth",
// "profiles" or "teams").
func NewPostgresRepositoryManager(service string) (*PostgresRepositoryManager, error) {
	sub, err := migrations.For(service)
	if err != nil {
		return nil, err
	}
	return &PostgresRepositoryManager{migrations: sub}, nil
}

// Open opens a pgx-backed pool and checks it is reachable.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
