package repomanager

import (
	"context"
	"database/sql"

	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/accounts"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/marketconfigs"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/memberships"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/profiles"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/teams"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can
// switch between the pool and a transaction without knowing the backend.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Teams(db dbx.DBTX) teams.Repository
	Memberships(db dbx.DBTX) memberships.Repository
	MarketConfigs(db dbx.DBTX) marketconfigs.Repository
}
