package services

import (
	"context"
	"database/sql"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/logging"
	"github.com/jaftdelgado/aureum-services/internal/server/accesscode"
	"github.com/jaftdelgado/aureum-services/internal/server/blobstore"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/repomanager"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/teams"
	"github.com/jaftdelgado/aureum-services/internal/server/saga"
)

// Course field limits.
const (
	MinTeamNameLength        = 3
	MaxTeamNameLength        = 48
	MaxTeamDescriptionLength = 128
)

// accessCodeAttempts is how many codes an insert tries before reporting
// the collision as a conflict.
const accessCodeAttempts = 3

const (
	msgTeamNotFound = "Curso no encontrado"
	msgCoverNotSet  = "Portada no configurada"
)

// generateAccessCode is a seam for tests.
var generateAccessCode = accesscode.Generate

type CreateTeamInput struct {
	Name        string
	Description *string
	ProfessorID uuid.UUID
	// Image is optional.
	Image *models.Blob
}

type TeamService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	logger      logging.Logger
}

func NewTeamService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, logger logging.Logger) *TeamService {
	return &TeamService{db: db, repomanager: m, blobs: blobs, logger: logger}
}

func validateTeamName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinTeamNameLength || n > MaxTeamNameLength {
		return common.Validation("El nombre debe tener entre 3 y 48 caracteres")
	}
	return nil
}

func validateTeamDescription(d *string) error {
	if d != nil && utf8.RuneCountInString(*d) > MaxTeamDescriptionLength {
		return common.Validation("La descripcion no puede exceder 128 caracteres")
	}
	return nil
}

// Create stores the optional cover first and then the team row that
// references it. A failed insert deletes the cover again, so no team ever
// points at a missing blob.
func (s *TeamService) Create(ctx context.Context, in CreateTeamInput) (*models.Team, error) {
	name := sanitize(in.Name)
	desc := sanitizePtr(in.Description)

	if err := validateTeamName(name); err != nil {
		return nil, err
	}
	if err := validateTeamDescription(desc); err != nil {
		return nil, err
	}
	if in.ProfessorID == uuid.Nil {
		return nil, common.Validation("professor_id es obligatorio")
	}
	if in.Image != nil {
		if err := validateImage(in.Image); err != nil {
			return nil, err
		}
	}

	repo := s.repomanager.Teams(s.db)

	var (
		blobID  string
		created *models.Team
		steps   []saga.Step
	)

	if in.Image != nil {
		steps = append(steps, uploadBlobStep(s.blobs, in.Image, &blobID))
	}

	steps = append(steps, saga.Step{
		Name: "insert_team",
		Do: func(ctx context.Context) error {
			team := &models.Team{
				ProfessorID: in.ProfessorID,
				Name:        name,
				Description: desc,
			}
			if blobID != "" {
				team.TeamPic = &blobID
			}
			t, err := s.insertWithAccessCode(ctx, repo, team)
			if err != nil {
				return err
			}
			created = t
			return nil
		},
	})

	if err := saga.Run(ctx, s.logger, steps...); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "course created", "team_id", created.PublicID, "has_cover", created.TeamPic != nil)
	return created, nil
}

// insertWithAccessCode inserts team with a fresh code, retrying only when
// the code collided.
func (s *TeamService) insertWithAccessCode(ctx context.Context, repo teams.Repository, team *models.Team) (*models.Team, error) {
	var err error
	for attempt := 1; attempt <= accessCodeAttempts; attempt++ {
		code, genErr := generateAccessCode()
		if genErr != nil {
			return nil, common.Unexpected("generate access code", genErr)
		}
		team.AccessCode = code
		team.PublicID = uuid.New()

		var created *models.Team
		created, err = repo.Create(ctx, team)
		if err == nil {
			return created, nil
		}
		if !dbx.IsConstraint(err, teams.AccessCodeConstraint) {
			break
		}
		s.logger.Warn(ctx, "access code collision", "attempt", attempt)
	}

	if dbx.IsConstraint(err, teams.AccessCodeConstraint) {
		return nil, common.Conflict("No se pudo generar un codigo de acceso unico")
	}
	return nil, common.Unexpected("insert team", err)
}

func (s *TeamService) Get(ctx context.Context, publicID uuid.UUID) (*models.Team, error) {
	t, err := s.repomanager.Teams(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, lookupError("get team", msgTeamNotFound, err)
	}
	return t, nil
}

func (s *TeamService) List(ctx context.Context) ([]*models.Team, error) {
	ts, err := s.repomanager.Teams(s.db).List(ctx)
	if err != nil {
		return nil, common.Unexpected("list teams", err)
	}
	return ts, nil
}

func (s *TeamService) ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]*models.Team, error) {
	ts, err := s.repomanager.Teams(s.db).ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, common.Unexpected("list professor teams", err)
	}
	return ts, nil
}

// ListByStudent returns the teams userID has joined.
func (s *TeamService) ListByStudent(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	ts, err := s.repomanager.Teams(s.db).ListByMember(ctx, userID)
	if err != nil {
		return nil, common.Unexpected("list student teams", err)
	}
	return ts, nil
}

func (s *TeamService) Patch(ctx context.Context, publicID uuid.UUID, patch models.TeamPatch) (*models.Team, error) {
	patch.Name = sanitizePtr(patch.Name)
	patch.Description = sanitizePtr(patch.Description)

	if patch.Name != nil {
		if err := validateTeamName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if err := validateTeamDescription(patch.Description); err != nil {
		return nil, err
	}

	t, err := s.repomanager.Teams(s.db).Update(ctx, publicID, patch)
	if err != nil {
		return nil, lookupError("update team", msgTeamNotFound, err)
	}
	return t, nil
}

// UploadCover stores img and repoints the team at it.
func (s *TeamService) UploadCover(ctx context.Context, publicID uuid.UUID, img *models.Blob) (*models.Team, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}

	repo := s.repomanager.Teams(s.db)
	if _, err := repo.GetByPublicID(ctx, publicID); err != nil {
		return nil, lookupError("get team", msgTeamNotFound, err)
	}

	var (
		blobID  string
		updated *models.Team
	)
	err := saga.Run(ctx, s.logger,
		uploadBlobStep(s.blobs, img, &blobID),
		saga.Step{
			Name: "set_team_pic",
			Do: func(ctx context.Context) error {
				t, err := repo.SetTeamPic(ctx, publicID, blobID)
				if err != nil {
					return lookupError("set team pic", msgTeamNotFound, err)
				}
				updated = t
				return nil
			},
		},
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TeamService) GetCover(ctx context.Context, publicID uuid.UUID) (*models.Blob, error) {
	t, err := s.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if t.TeamPic == nil || *t.TeamPic == "" {
		return nil, common.NotFound(msgCoverNotSet)
	}
	return getBlob(ctx, s.blobs, *t.TeamPic)
}

// Delete removes the team together with its memberships and market
// configuration. The cover blob is left behind.
func (s *TeamService) Delete(ctx context.Context, publicID uuid.UUID) error {
	if err := s.repomanager.Teams(s.db).Delete(ctx, publicID); err != nil {
		return lookupError("delete team", msgTeamNotFound, err)
	}
	return nil
}
