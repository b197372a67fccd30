package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/precheck"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/marketconfigs"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/repomanager"
)

const (
	msgMarketConfigNotFound = "Market config not found"
	msgMarketConfigExists   = "Configuration already exists for this team"
	msgMarketTeamNotFound   = "Team not found"
)

type MarketConfigService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewMarketConfigService(db *sql.DB, m repomanager.RepositoryManager) *MarketConfigService {
	return &MarketConfigService{db: db, repomanager: m}
}

func validateMarketConfig(c *models.MarketConfig) error {
	if c.InitialCash <= 0 {
		return common.Validation("initialcash must be positive")
	}
	if !c.Currency.Valid() {
		return common.Validation("currency must be one of USD, EUR, MXN")
	}
	if !c.ThickSpeed.ValidSpeed() {
		return common.Validation("thickspeed must be one of High, Medium, Low")
	}
	levels := []struct {
		field string
		level models.Level
	}{
		{"marketvolatility", c.MarketVolatility},
		{"marketliquidity", c.MarketLiquidity},
		{"transactionfee", c.TransactionFee},
		{"eventfrequency", c.EventFrequency},
		{"dividendimpact", c.DividendImpact},
		{"crashimpact", c.CrashImpact},
	}
	for _, l := range levels {
		if !l.level.Valid() {
			return common.Validation(l.field + " must be one of High, Medium, Low, Disabled")
		}
	}
	return nil
}

// Create stores the configuration of the team c.TeamPublicID. A team has at
// most one configuration.
func (s *MarketConfigService) Create(ctx context.Context, c *models.MarketConfig) (*models.MarketConfig, error) {
	if err := validateMarketConfig(c); err != nil {
		return nil, err
	}

	team, err := s.repomanager.Teams(s.db).GetByPublicID(ctx, c.TeamPublicID)
	if err != nil {
		return nil, lookupError("get team", msgMarketTeamNotFound, err)
	}

	repo := s.repomanager.MarketConfigs(s.db)

	err = precheck.Ensure(ctx, precheck.Rule{
		Name:    "market config per team",
		Message: msgMarketConfigExists,
		Exists: func(ctx context.Context) (bool, error) {
			return repo.ExistsForTeam(ctx, team.TeamID)
		},
	})
	if err != nil {
		return nil, err
	}

	in := *c
	in.TeamID = team.TeamID
	in.PublicID = uuid.New()

	created, err := repo.Create(ctx, &in)
	if err != nil {
		if dbx.IsConstraint(err, marketconfigs.TeamConstraint) {
			return nil, common.Conflict(msgMarketConfigExists)
		}
		return nil, common.Unexpected("insert market config", err)
	}
	return created, nil
}

func (s *MarketConfigService) Get(ctx context.Context, publicID uuid.UUID) (*models.MarketConfig, error) {
	c, err := s.repomanager.MarketConfigs(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, lookupError("get market config", msgMarketConfigNotFound, err)
	}
	return c, nil
}

func (s *MarketConfigService) GetByTeam(ctx context.Context, teamPublicID uuid.UUID) (*models.MarketConfig, error) {
	team, err := s.repomanager.Teams(s.db).GetByPublicID(ctx, teamPublicID)
	if err != nil {
		return nil, lookupError("get team", msgMarketTeamNotFound, err)
	}
	c, err := s.repomanager.MarketConfigs(s.db).GetByTeamID(ctx, team.TeamID)
	if err != nil {
		return nil, lookupError("get market config", msgMarketConfigNotFound, err)
	}
	return c, nil
}

// Update applies patch and stores the result. The read and the write run
// in one transaction.
func (s *MarketConfigService) Update(ctx context.Context, publicID uuid.UUID, patch models.MarketConfigPatch) (*models.MarketConfig, error) {
	var updated *models.MarketConfig

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.MarketConfigs(tx)

		current, err := repo.GetByPublicID(ctx, publicID)
		if err != nil {
			return lookupError("get market config", msgMarketConfigNotFound, err)
		}

		patch.Apply(current)
		if err := validateMarketConfig(current); err != nil {
			return err
		}

		updated, err = repo.Update(ctx, current)
		if err != nil {
			return lookupError("update market config", msgMarketConfigNotFound, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
