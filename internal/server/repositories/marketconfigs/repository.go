package marketconfigs

import (
	"context"

	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

// TeamConstraint enforces one configuration per team.
const TeamConstraint = "market_configurations_team_id_key"

type Repository interface {
	Create(ctx context.Context, c *models.MarketConfig) (*models.MarketConfig, error)
	ExistsForTeam(ctx context.Context, teamID int64) (bool, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.MarketConfig, error)
	GetByTeamID(ctx context.Context, teamID int64) (*models.MarketConfig, error)
	// Update stores every settings field of c, identified by c.PublicID.
	Update(ctx context.Context, c *models.MarketConfig) (*models.MarketConfig, error)
}
