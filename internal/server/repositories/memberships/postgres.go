// Package memberships stores course memberships in PostgreSQL.
package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMembership(s scanner) (*models.Membership, error) {
	m := &models.Membership{}
	if err := s.Scan(&m.MembershipID, &m.PublicID, &m.TeamID, &m.TeamPublicID, &m.UserID, &m.JoinedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	query :=
		`WITH inserted AS (
		     INSERT INTO team_memberships (public_id, team_id, user_id)
		     VALUES ($1, $2, $3)
		     RETURNING membership_id, public_id, team_id, user_id, joined_at
		 )
		 SELECT i.membership_id, i.public_id, i.team_id, t.public_id, i.user_id, i.joined_at
		 FROM inserted i JOIN teams t ON t.team_id = i.team_id`

	created, err := scanMembership(r.db.QueryRowContext(ctx, query, m.PublicID, m.TeamID, m.UserID))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return created, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, teamID int64, userID uuid.UUID) (bool, error) {
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM team_memberships WHERE team_id = $1 AND user_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, teamID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Membership, error) {
	query :=
		`SELECT m.membership_id, m.public_id, m.team_id, t.public_id, m.user_id, m.joined_at
		 FROM team_memberships m JOIN teams t ON t.team_id = m.team_id
		 WHERE m.public_id = $1`

	m, err := scanMembership(r.db.QueryRowContext(ctx, query, publicID))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return m, nil
}

func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID int64) ([]*models.Membership, error) {
	query :=
		`SELECT m.membership_id, m.public_id, m.team_id, t.public_id, m.user_id, m.joined_at
		 FROM team_memberships m JOIN teams t ON t.team_id = m.team_id
		 WHERE m.team_id = $1
		 ORDER BY m.joined_at, m.membership_id`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, publicID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM team_memberships WHERE public_id = $1`, publicID)
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
