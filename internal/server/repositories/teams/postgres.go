// Package teams stores courses in PostgreSQL.
package teams

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

const columns = `t.team_id, t.public_id, t.professor_id, t.name, t.description, t.team_pic, t.access_code, t.created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTeam(s scanner) (*models.Team, error) {
	t := &models.Team{}
	var description, pic sql.NullString
	if err := s.Scan(&t.TeamID, &t.PublicID, &t.ProfessorID, &t.Name, &description, &pic, &t.AccessCode, &t.CreatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	if pic.Valid {
		t.TeamPic = &pic.String
	}
	return t, nil
}

// Create inserts team. A taken access code fails with a conflict on
// AccessCodeConstraint.
func (r *PostgresRepository) Create(ctx context.Context, team *models.Team) (*models.Team, error) {
	query :=
		`INSERT INTO teams AS t (public_id, professor_id, name, description, team_pic, access_code)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + columns

	t, err := scanTeam(r.db.QueryRowContext(ctx, query,
		team.PublicID, team.ProfessorID, team.Name, team.Description, team.TeamPic, team.AccessCode))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return t, nil
}

func (r *PostgresRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Team, error) {
	t, err := scanTeam(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM teams t WHERE t.public_id = $1`, publicID))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return t, nil
}

func (r *PostgresRepository) GetByAccessCode(ctx context.Context, code string) (*models.Team, error) {
	t, err := scanTeam(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM teams t WHERE t.access_code = $1`, code))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Team, error) {
	return r.list(ctx, `SELECT `+columns+` FROM teams t ORDER BY t.created_at DESC, t.team_id DESC`)
}

func (r *PostgresRepository) ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]*models.Team, error) {
	return r.list(ctx, `SELECT `+columns+` FROM teams t WHERE t.professor_id = $1 ORDER BY t.created_at DESC, t.team_id DESC`, professorID)
}

func (r *PostgresRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	query :=
		`SELECT ` + columns + ` FROM teams t
		 JOIN team_memberships m ON m.team_id = t.team_id
		 WHERE m.user_id = $1
		 ORDER BY m.joined_at DESC, t.team_id DESC`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, publicID uuid.UUID, patch models.TeamPatch) (*models.Team, error) {
	query :=
		`UPDATE teams AS t
		 SET name = COALESCE($2, t.name),
		     description = COALESCE($3, t.description)
		 WHERE t.public_id = $1
		 RETURNING ` + columns

	t, err := scanTeam(r.db.QueryRowContext(ctx, query, publicID, patch.Name, patch.Description))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return t, nil
}

func (r *PostgresRepository) SetTeamPic(ctx context.Context, publicID uuid.UUID, blobID string) (*models.Team, error) {
	query :=
		`UPDATE teams AS t
		 SET team_pic = $2
		 WHERE t.public_id = $1
		 RETURNING ` + columns

	t, err := scanTeam(r.db.QueryRowContext(ctx, query, publicID, blobID))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, publicID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE public_id = $1`, publicID)
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
