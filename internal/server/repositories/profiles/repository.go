package profiles

import (
	"context"

	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

const (
	AuthUserIDConstraint = "profiles_auth_user_id_key"
	UsernameConstraint   = "profiles_username_key"
)

// Repository persists profiles keyed by the auth user id.
type Repository interface {
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	GetByAuthID(ctx context.Context, authID string) (*models.Profile, error)
	// GetByAuthIDs returns the profiles found, in no particular order.
	GetByAuthIDs(ctx context.Context, authIDs []string) ([]*models.Profile, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByAuthID(ctx context.Context, authID string) (bool, error)
	Update(ctx context.Context, authID string, patch models.ProfilePatch) (*models.Profile, error)
	SetProfilePic(ctx context.Context, authID string, blobID string) (*models.Profile, error)
	Delete(ctx context.Context, authID string) error
}
