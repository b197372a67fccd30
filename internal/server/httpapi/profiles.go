package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jaftdelgado/aureum-services/internal/logging"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/services"
)

type ProfileService interface {
	Create(ctx context.Context, in services.CreateProfileInput) (*models.Profile, error)
	Get(ctx context.Context, authID string) (*models.Profile, error)
	Batch(ctx context.Context, authIDs []string) ([]*models.Profile, error)
	Patch(ctx context.Context, authID string, patch models.ProfilePatch) (*models.Profile, error)
	Delete(ctx context.Context, authID string) error
	UploadAvatar(ctx context.Context, authID string, img *models.Blob) (*models.Profile, error)
	GetAvatar(ctx context.Context, authID string) (*models.Blob, error)
}

type profileHandler struct {
	profiles ProfileService
	logger   logging.Logger
}

// NewProfilesRouter serves /api/v1/profiles.
func NewProfilesRouter(log logging.Logger, profiles ProfileService, checks ...Check) http.Handler {
	h := &profileHandler{profiles: profiles, logger: log}

	r := newRouter(log)
	r.Get("/health", Health("profiles", checks...))
	r.Route("/api/v1/profiles", func(r chi.Router) {
		r.Post("/", h.create)
		r.Post("/batch", h.batch)
		r.Get("/{auth_id}", h.get)
		r.Patch("/{auth_id}", h.patch)
		r.Delete("/{auth_id}", h.delete)
		r.Post("/{auth_id}/avatar", h.uploadAvatar)
		r.Get("/{auth_id}/avatar", h.getAvatar)
	})
	return r
}

func (h *profileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	fullName := req.FullName
	if strings.TrimSpace(fullName) == "" {
		fullName = strings.TrimSpace(req.FirstName + " " + req.LastName)
	}

	p, err := h.profiles.Create(r.Context(), services.CreateProfileInput{
		AuthUserID: req.AuthUserID,
		Username:   req.Username,
		FullName:   fullName,
		Bio:        req.Bio,
		Role:       req.Role,
	})
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toProfileResponse(p))
}

func (h *profileHandler) batch(w http.ResponseWriter, r *http.Request) {
	var req batchProfilesRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	ps, err := h.profiles.Batch(r.Context(), req.ProfileIDs)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toProfileResponses(ps))
}

func (h *profileHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), chi.URLParam(r, "auth_id"))
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *profileHandler) patch(w http.ResponseWriter, r *http.Request) {
	var req patchProfileRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	p, err := h.profiles.Patch(r.Context(), chi.URLParam(r, "auth_id"), models.ProfilePatch{
		FullName: req.FullName,
		Bio:      req.Bio,
		Role:     req.Role,
	})
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *profileHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), chi.URLParam(r, "auth_id")); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteNoContent(w)
}

func (h *profileHandler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	img, err := readImage(w, r, "file", true)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	p, err := h.profiles.UploadAvatar(r.Context(), chi.URLParam(r, "auth_id"), img)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *profileHandler) getAvatar(w http.ResponseWriter, r *http.Request) {
	b, err := h.profiles.GetAvatar(r.Context(), chi.URLParam(r, "auth_id"))
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	writeBlob(w, b)
}
