package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/precheck"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/memberships"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/repomanager"
)

const (
	msgInvalidAccessCode  = "Codigo de acceso invalido"
	msgAlreadyJoined      = "El usuario ya pertenece a este curso"
	msgMembershipNotFound = "Membresia no encontrada"
)

// MembershipService implements joining a course by access code. Everything
// here touches only the relational store.
type MembershipService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewMembershipService(db *sql.DB, m repomanager.RepositoryManager) *MembershipService {
	return &MembershipService{db: db, repomanager: m}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *MembershipService) teamByCode(ctx context.Context, code string) (*models.Team, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, common.Validation("El codigo de acceso es obligatorio")
	}
	t, err := s.repomanager.Teams(s.db).GetByAccessCode(ctx, code)
	if err != nil {
		return nil, lookupError("get team by code", msgInvalidAccessCode, err)
	}
	return t, nil
}

// Join adds userID to the team owning code. An unknown code is NotFound and
// an existing membership is a Conflict; the unique (team, user) constraint
// backs the check.
func (s *MembershipService) Join(ctx context.Context, code string, userID uuid.UUID) (*models.Membership, error) {
	if userID == uuid.Nil {
		return nil, common.Validation("user_id es obligatorio")
	}

	team, err := s.teamByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Memberships(s.db)

	err = precheck.Ensure(ctx, precheck.Rule{
		Name:    "membership pair",
		Message: msgAlreadyJoined,
		Exists: func(ctx context.Context) (bool, error) {
			return repo.Exists(ctx, team.TeamID, userID)
		},
	})
	if err != nil {
		return nil, err
	}

	m, err := repo.Create(ctx, &models.Membership{
		PublicID: uuid.New(),
		TeamID:   team.TeamID,
		UserID:   userID,
	})
	if err != nil {
		if dbx.IsConstraint(err, memberships.PairConstraint) {
			return nil, common.Conflict(msgAlreadyJoined)
		}
		return nil, common.Unexpected("insert membership", err)
	}
	return m, nil
}

// ListByCode returns the members of the team owning code.
func (s *MembershipService) ListByCode(ctx context.Context, code string) ([]*models.Membership, error) {
	team, err := s.teamByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ms, err := s.repomanager.Memberships(s.db).ListByTeam(ctx, team.TeamID)
	if err != nil {
		return nil, common.Unexpected("list memberships", err)
	}
	return ms, nil
}

func (s *MembershipService) Get(ctx context.Context, publicID uuid.UUID) (*models.Membership, error) {
	m, err := s.repomanager.Memberships(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, lookupError("get membership", msgMembershipNotFound, err)
	}
	return m, nil
}

func (s *MembershipService) Delete(ctx context.Context, publicID uuid.UUID) error {
	err := s.repomanager.Memberships(s.db).Delete(ctx, publicID)
	if errors.Is(err, common.ErrorNotFound) {
		return common.NotFound(msgMembershipNotFound)
	}
	if err != nil {
		return common.Unexpected("delete membership", err)
	}
	return nil
}
