// Package profiles stores user profiles in PostgreSQL.
package profiles

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

const returning = `profile_id, auth_user_id, username, full_name, bio, role, profile_pic_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*models.Profile, error) {
	p := &models.Profile{}
	var bio, pic sql.NullString
	if err := s.Scan(&p.ProfileID, &p.AuthUserID, &p.Username, &p.FullName, &bio, &p.Role, &pic, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if bio.Valid {
		p.Bio = &bio.String
	}
	if pic.Valid {
		p.ProfilePicID = &pic.String
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	query :=
		`INSERT INTO profiles (auth_user_id, username, full_name, bio, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ` + returning

	p, err := scanProfile(r.db.QueryRowContext(ctx, query,
		profile.AuthUserID, profile.Username, profile.FullName, profile.Bio, profile.Role))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByAuthID(ctx context.Context, authID string) (*models.Profile, error) {
	query := `SELECT ` + returning + ` FROM profiles WHERE auth_user_id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, authID))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByAuthIDs(ctx context.Context, authIDs []string) ([]*models.Profile, error) {
	if len(authIDs) == 0 {
		return []*models.Profile{}, nil
	}

	placeholders := make([]string, len(authIDs))
	args := make([]any, len(authIDs))
	for i, id := range authIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT ` + returning + ` FROM profiles WHERE auth_user_id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Profile, 0, len(authIDs))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE username = $1)`, username)
}

func (r *PostgresRepository) ExistsByAuthID(ctx context.Context, authID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE auth_user_id = $1)`, authID)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

// Update applies the non-nil fields of patch. COALESCE keeps the stored
// value for a NULL parameter.
func (r *PostgresRepository) Update(ctx context.Context, authID string, patch models.ProfilePatch) (*models.Profile, error) {
	query :=
		`UPDATE profiles
		 SET full_name = COALESCE($2, full_name),
		     bio = COALESCE($3, bio),
		     role = COALESCE($4, role),
		     updated_at = now()
		 WHERE auth_user_id = $1
		 RETURNING ` + returning

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, authID, patch.FullName, patch.Bio, patch.Role))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return p, nil
}

// SetProfilePic repoints the avatar reference to blobID.
func (r *PostgresRepository) SetProfilePic(ctx context.Context, authID string, blobID string) (*models.Profile, error) {
	query :=
		`UPDATE profiles
		 SET profile_pic_id = $2, updated_at = now()
		 WHERE auth_user_id = $1
		 RETURNING ` + returning

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, authID, blobID))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, authID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE auth_user_id = $1`, authID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
