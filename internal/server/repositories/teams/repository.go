package teams

import (
	"context"

	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

// Constraint names raised by team inserts.
const (
	AccessCodeConstraint = "teams_access_code_key"
	PublicIDConstraint   = "teams_public_id_key"
)

type Repository interface {
	Create(ctx context.Context, team *models.Team) (*models.Team, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Team, error)
	GetByAccessCode(ctx context.Context, code string) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]*models.Team, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Team, error)
	Update(ctx context.Context, publicID uuid.UUID, patch models.TeamPatch) (*models.Team, error)
	SetTeamPic(ctx context.Context, publicID uuid.UUID, blobID string) (*models.Team, error)
	// Delete removes the team; memberships and market config cascade.
	Delete(ctx context.Context, publicID uuid.UUID) error
}
