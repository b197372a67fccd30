package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/logging"
	"github.com/jaftdelgado/aureum-services/internal/server/blobstore"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/precheck"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/profiles"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/repomanager"
	"github.com/jaftdelgado/aureum-services/internal/server/saga"
)

const (
	msgUsernameTaken    = "El nombre de usuario ya esta en uso."
	msgProfileExists    = "Este usuario ya tiene un perfil registrado."
	msgProfileNotFound  = "Perfil no encontrado"
	msgAvatarNotSet     = "Avatar no configurado"
	msgImageNotFound    = "Imagen no encontrada"
	maxBatchProfileSize = 100
)

// Profile field limits in characters, following the profiles columns.
const (
	MaxAuthUserIDLength = 64
	MaxRoleLength       = 20
)

type CreateProfileInput struct {
	AuthUserID string
	Username   string
	FullName   string
	Bio        *string
	Role       *string
}

type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	logger      logging.Logger
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, logger logging.Logger) *ProfileService {
	return &ProfileService{db: db, repomanager: m, blobs: blobs, logger: logger}
}

// Create registers a profile. Username and auth user id are unique; both
// are checked before the insert so the caller gets a readable conflict.
func (s *ProfileService) Create(ctx context.Context, in CreateProfileInput) (*models.Profile, error) {
	p := &models.Profile{
		AuthUserID: strings.TrimSpace(in.AuthUserID),
		Username:   strings.TrimSpace(in.Username),
		FullName:   sanitize(in.FullName),
		Bio:        sanitizePtr(in.Bio),
		Role:       models.DefaultProfileRole,
	}
	if in.Role != nil && strings.TrimSpace(*in.Role) != "" {
		p.Role = strings.TrimSpace(*in.Role)
	}

	switch {
	case p.AuthUserID == "":
		return nil, common.Validation("auth_user_id es obligatorio")
	case utf8.RuneCountInString(p.AuthUserID) > MaxAuthUserIDLength:
		return nil, common.Validation(fmt.Sprintf("auth_user_id no puede exceder %d caracteres", MaxAuthUserIDLength))
	case p.FullName == "":
		return nil, common.Validation("El nombre completo es obligatorio")
	}
	if err := validateUsername(p.Username); err != nil {
		return nil, err
	}
	if err := validateProfileText(&p.FullName, &p.Role); err != nil {
		return nil, err
	}

	repo := s.repomanager.Profiles(s.db)

	err := precheck.Ensure(ctx,
		precheck.Rule{Name: "profile username", Message: msgUsernameTaken, Exists: func(ctx context.Context) (bool, error) {
			return repo.ExistsByUsername(ctx, p.Username)
		}},
		precheck.Rule{Name: "profile auth id", Message: msgProfileExists, Exists: func(ctx context.Context) (bool, error) {
			return repo.ExistsByAuthID(ctx, p.AuthUserID)
		}},
	)
	if err != nil {
		return nil, err
	}

	created, err := repo.Create(ctx, p)
	if err != nil {
		switch {
		case dbx.IsConstraint(err, profiles.UsernameConstraint):
			return nil, common.Conflict(msgUsernameTaken)
		case dbx.IsConstraint(err, profiles.AuthUserIDConstraint):
			return nil, common.Conflict(msgProfileExists)
		default:
			return nil, common.Unexpected("insert profile", err)
		}
	}
	return created, nil
}

// validateProfileText checks the length of the fields that are set.
func validateProfileText(fullName, role *string) error {
	if fullName != nil && utf8.RuneCountInString(*fullName) > MaxFullNameLength {
		return common.Validation(fmt.Sprintf("El nombre completo no puede exceder %d caracteres", MaxFullNameLength))
	}
	if role != nil && utf8.RuneCountInString(*role) > MaxRoleLength {
		return common.Validation(fmt.Sprintf("El rol no puede exceder %d caracteres", MaxRoleLength))
	}
	return nil
}

func (s *ProfileService) Get(ctx context.Context, authID string) (*models.Profile, error) {
	p, err := s.repomanager.Profiles(s.db).GetByAuthID(ctx, authID)
	if err != nil {
		return nil, lookupError("get profile", msgProfileNotFound, err)
	}
	return p, nil
}

// Batch returns the profiles of authIDs in request order. Unknown ids are
// skipped and duplicates are returned once.
func (s *ProfileService) Batch(ctx context.Context, authIDs []string) ([]*models.Profile, error) {
	if len(authIDs) > maxBatchProfileSize {
		return nil, common.Validation(fmt.Sprintf("Se permiten como maximo %d perfiles", maxBatchProfileSize))
	}

	ids := make([]string, 0, len(authIDs))
	seen := make(map[string]struct{}, len(authIDs))
	for _, id := range authIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []*models.Profile{}, nil
	}

	found, err := s.repomanager.Profiles(s.db).GetByAuthIDs(ctx, ids)
	if err != nil {
		return nil, common.Unexpected("batch profiles", err)
	}

	byID := make(map[string]*models.Profile, len(found))
	for _, p := range found {
		byID[p.AuthUserID] = p
	}

	out := make([]*models.Profile, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProfileService) Patch(ctx context.Context, authID string, patch models.ProfilePatch) (*models.Profile, error) {
	patch.FullName = sanitizePtr(patch.FullName)
	patch.Bio = sanitizePtr(patch.Bio)
	if patch.Role != nil {
		r := strings.TrimSpace(*patch.Role)
		patch.Role = &r
	}
	if patch.FullName != nil && *patch.FullName == "" {
		return nil, common.Validation("El nombre completo no puede estar vacio")
	}
	if patch.Role != nil && *patch.Role == "" {
		return nil, common.Validation("El rol no puede estar vacio")
	}
	if err := validateProfileText(patch.FullName, patch.Role); err != nil {
		return nil, err
	}

	p, err := s.repomanager.Profiles(s.db).Update(ctx, authID, patch)
	if err != nil {
		return nil, lookupError("update profile", msgProfileNotFound, err)
	}
	return p, nil
}

func (s *ProfileService) Delete(ctx context.Context, authID string) error {
	if err := s.repomanager.Profiles(s.db).Delete(ctx, authID); err != nil {
		return lookupError("delete profile", msgProfileNotFound, err)
	}
	return nil
}

// UploadAvatar stores img and points the profile at it. If the repoint
// fails the new blob is deleted; the previous blob is never touched.
func (s *ProfileService) UploadAvatar(ctx context.Context, authID string, img *models.Blob) (*models.Profile, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}

	repo := s.repomanager.Profiles(s.db)

	if _, err := repo.GetByAuthID(ctx, authID); err != nil {
		return nil, lookupError("get profile", msgProfileNotFound, err)
	}

	var (
		blobID  string
		updated *models.Profile
	)

	err := saga.Run(ctx, s.logger,
		uploadBlobStep(s.blobs, img, &blobID),
		saga.Step{
			Name: "set_profile_pic",
			Do: func(ctx context.Context) error {
				p, err := repo.SetProfilePic(ctx, authID, blobID)
				if err != nil {
					return lookupError("set profile pic", msgProfileNotFound, err)
				}
				updated = p
				return nil
			},
		},
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetAvatar returns the avatar blob of the profile.
func (s *ProfileService) GetAvatar(ctx context.Context, authID string) (*models.Blob, error) {
	p, err := s.Get(ctx, authID)
	if err != nil {
		return nil, err
	}
	if p.ProfilePicID == nil || *p.ProfilePicID == "" {
		return nil, common.NotFound(msgAvatarNotSet)
	}
	return getBlob(ctx, s.blobs, *p.ProfilePicID)
}

// uploadBlobStep puts img into blobs and records the id in *id. Its undo
// deletes the blob again.
func uploadBlobStep(blobs blobstore.Store, img *models.Blob, id *string) saga.Step {
	return saga.Step{
		Name: "upload_blob",
		Do: func(ctx context.Context) error {
			v, err := blobs.Put(ctx, img)
			if err != nil {
				return common.Unexpected("upload blob", err)
			}
			*id = v
			return nil
		},
		Undo: func(ctx context.Context) error {
			if err := blobs.Delete(ctx, *id); err != nil {
				return fmt.Errorf("delete blob %s: %w", *id, err)
			}
			return nil
		},
	}
}

func getBlob(ctx context.Context, blobs blobstore.Store, id string) (*models.Blob, error) {
	b, err := blobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgImageNotFound)
		}
		return nil, common.Unexpected("get blob", err)
	}
	return b, nil
}
