package memberships

import (
	"context"

	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

// PairConstraint is the unique (team, user) constraint.
const PairConstraint = "team_memberships_team_user_key"

type Repository interface {
	// Create inserts m. A second row for the same (team, user) pair fails with
	// a conflict on PairConstraint.
	Create(ctx context.Context, m *models.Membership) (*models.Membership, error)
	Exists(ctx context.Context, teamID int64, userID uuid.UUID) (bool, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Membership, error)
	ListByTeam(ctx context.Context, teamID int64) ([]*models.Membership, error)
	Delete(ctx context.Context, publicID uuid.UUID) error
}
