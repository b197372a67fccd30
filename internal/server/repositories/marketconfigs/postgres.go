// Package marketconfigs stores per-course market simulation settings in
// PostgreSQL.
package marketconfigs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

const settingsColumns = `initial_cash, currency, market_volatility, market_liquidity, thick_speed,
	transaction_fee, event_frequency, dividend_impact, crash_impact, allow_short_selling`

const selectQuery = `SELECT c.config_id, c.public_id, c.team_id, t.public_id,
	c.initial_cash, c.currency, c.market_volatility, c.market_liquidity, c.thick_speed,
	c.transaction_fee, c.event_frequency, c.dividend_impact, c.crash_impact, c.allow_short_selling,
	c.created_at, c.updated_at
	FROM market_configurations c JOIN teams t ON t.team_id = c.team_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConfig(s scanner) (*models.MarketConfig, error) {
	c := &models.MarketConfig{}
	err := s.Scan(&c.ConfigID, &c.PublicID, &c.TeamID, &c.TeamPublicID,
		&c.InitialCash, &c.Currency, &c.MarketVolatility, &c.MarketLiquidity, &c.ThickSpeed,
		&c.TransactionFee, &c.EventFrequency, &c.DividendImpact, &c.CrashImpact, &c.AllowShortSelling,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func settingsArgs(c *models.MarketConfig) []any {
	return []any{
		c.InitialCash, string(c.Currency), string(c.MarketVolatility), string(c.MarketLiquidity), string(c.ThickSpeed),
		string(c.TransactionFee), string(c.EventFrequency), string(c.DividendImpact), string(c.CrashImpact), c.AllowShortSelling,
	}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.MarketConfig) (*models.MarketConfig, error) {
	query :=
		`INSERT INTO market_configurations (public_id, team_id, ` + settingsColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING config_id`

	args := append([]any{c.PublicID, c.TeamID}, settingsArgs(c)...)

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return nil, dbx.MapError(err)
	}
	return r.get(ctx, `c.config_id = $1`, id)
}

func (r *PostgresRepository) ExistsForTeam(ctx context.Context, teamID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM market_configurations WHERE team_id = $1)`, teamID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.MarketConfig, error) {
	return r.get(ctx, `c.public_id = $1`, publicID)
}

func (r *PostgresRepository) GetByTeamID(ctx context.Context, teamID int64) (*models.MarketConfig, error) {
	return r.get(ctx, `c.team_id = $1`, teamID)
}

func (r *PostgresRepository) get(ctx context.Context, where string, arg any) (*models.MarketConfig, error) {
	c, err := scanConfig(r.db.QueryRowContext(ctx, selectQuery+` WHERE `+where, arg))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.MarketConfig) (*models.MarketConfig, error) {
	query :=
		`UPDATE market_configurations
		 SET initial_cash = $2, currency = $3, market_volatility = $4, market_liquidity = $5, thick_speed = $6,
		     transaction_fee = $7, event_frequency = $8, dividend_impact = $9, crash_impact = $10,
		     allow_short_selling = $11, updated_at = now()
		 WHERE public_id = $1
		 RETURNING config_id`

	args := append([]any{c.PublicID}, settingsArgs(c)...)

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return nil, dbx.MapError(err)
	}
	return r.get(ctx, `c.config_id = $1`, id)
}
