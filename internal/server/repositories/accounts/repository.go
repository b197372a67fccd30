package accounts

import (
	"context"

	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

// Unique constraints of the accounts table.
const (
	EmailConstraint    = "accounts_email_address_key"
	UsernameConstraint = "accounts_username_key"
)

// Repository persists accounts. Lookups return common.ErrorNotFound when no
// row matches; inserts violating a unique column return common.ErrorConflict.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Delete(ctx context.Context, id int64) error
}
