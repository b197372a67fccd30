package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/logging"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/services"
)

type TeamService interface {
	Create(ctx context.Context, in services.CreateTeamInput) (*models.Team, error)
	Get(ctx context.Context, publicID uuid.UUID) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]*models.Team, error)
	ListByStudent(ctx context.Context, userID uuid.UUID) ([]*models.Team, error)
	Patch(ctx context.Context, publicID uuid.UUID, patch models.TeamPatch) (*models.Team, error)
	UploadCover(ctx context.Context, publicID uuid.UUID, img *models.Blob) (*models.Team, error)
	GetCover(ctx context.Context, publicID uuid.UUID) (*models.Blob, error)
	Delete(ctx context.Context, publicID uuid.UUID) error
}

type MembershipService interface {
	Join(ctx context.Context, code string, userID uuid.UUID) (*models.Membership, error)
	ListByCode(ctx context.Context, code string) ([]*models.Membership, error)
	Delete(ctx context.Context, publicID uuid.UUID) error
}

type MarketConfigService interface {
	Create(ctx context.Context, c *models.MarketConfig) (*models.MarketConfig, error)
	Get(ctx context.Context, publicID uuid.UUID) (*models.MarketConfig, error)
	GetByTeam(ctx context.Context, teamPublicID uuid.UUID) (*models.MarketConfig, error)
	Update(ctx context.Context, publicID uuid.UUID, patch models.MarketConfigPatch) (*models.MarketConfig, error)
}

type teamHandler struct {
	teams   TeamService
	members MembershipService
	configs MarketConfigService
	logger  logging.Logger
}

// NewTeamsRouter serves courses, memberships and market configuration.
func NewTeamsRouter(log logging.Logger, teams TeamService, members MembershipService,
	configs MarketConfigService, checks ...Check) http.Handler {
	h := &teamHandler{teams: teams, members: members, configs: configs, logger: log}

	r := newRouter(log)
	r.Get("/health", Health("teams", checks...))

	r.Route("/api/v1/courses", func(r chi.Router) {
		r.Post("/", h.createCourse)
		r.Get("/", h.listCourses)
		r.Get("/professor/{professor_id}", h.listByProfessor)
		r.Get("/student/{user_id}", h.listByStudent)
		r.Get("/{public_id}", h.getCourse)
		r.Patch("/{public_id}", h.patchCourse)
		r.Delete("/{public_id}", h.deleteCourse)
		r.Post("/{public_id}/cover", h.uploadCover)
		r.Get("/{public_id}/cover", h.getCover)
		r.Get("/{public_id}/market-config", h.getConfigByTeam)
	})

	r.Route("/api/v1/memberships", func(r chi.Router) {
		r.Post("/join", h.join)
		r.Get("/course/{access_code}", h.listMembers)
		r.Delete("/{public_id}", h.leave)
	})

	r.Route("/api/market-config", func(r chi.Router) {
		r.Post("/", h.createConfig)
		r.Get("/{public_id}", h.getConfig)
		r.Put("/{public_id}", h.updateConfig)
	})
	return r
}

// --- courses ---

func formValue(r *http.Request, names ...string) string {
	for _, n := range names {
		if v := r.FormValue(n); v != "" {
			return v
		}
	}
	return ""
}

func (h *teamHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	professorID, err := uuid.Parse(strings.TrimSpace(formValue(r, "professor_id", "professorid")))
	if err != nil {
		WriteError(w, r, h.logger, common.Validation("professor_id no es un UUID valido"))
		return
	}

	img, err := readImage(w, r, "file", false)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	in := services.CreateTeamInput{
		Name:        formValue(r, "name", "teamname"),
		ProfessorID: professorID,
		Image:       img,
	}
	if _, ok := r.MultipartForm.Value["description"]; ok {
		d := r.FormValue("description")
		in.Description = &d
	}

	team, err := h.teams.Create(r.Context(), in)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toTeamResponse(team))
}

func (h *teamHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	ts, err := h.teams.List(r.Context())
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTeamResponses(ts))
}

func (h *teamHandler) listByProfessor(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "professor_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	ts, err := h.teams.ListByProfessor(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTeamResponses(ts))
}

func (h *teamHandler) listByStudent(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "user_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	ts, err := h.teams.ListByStudent(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTeamResponses(ts))
}

func (h *teamHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "public_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	team, err := h.teams.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTeamResponse(team))
}

func (h *teamHandler) patchCourse(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "public_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	var req patchTeamRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	team, err := h.teams.Patch(r.Context(), id, models.TeamPatch{Name: req.Name, Description: req.Description})
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTeamResponse(team))
}

func (h *teamHandler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "public_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	if err := h.teams.Delete(r.Context(), id); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteNoContent(w)
}

func (h *teamHandler) uploadCover(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "public_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	img, err := readImage(w, r, "file", true)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	team, err := h.teams.UploadCover(r.Context(), id, img)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTeamResponse(team))
}

func (h *teamHandler) getCover(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "public_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	b, err := h.teams.GetCover(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	writeBlob(w, b)
}

// --- memberships ---

func (h *teamHandler) join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		WriteError(w, r, h.logger, common.Validation("user_id no es un UUID valido"))
		return
	}
	m, err := h.members.Join(r.Context(), req.AccessCode, userID)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toMembershipResponse(m))
}

func (h *teamHandler) listMembers(w http.ResponseWriter, r *http.Request) {
	ms, err := h.members.ListByCode(r.Context(), chi.URLParam(r, "access_code"))
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toMembershipResponses(ms))
}

func (h *teamHandler) leave(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "public_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	if err := h.members.Delete(r.Context(), id); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteNoContent(w)
}

// --- market configuration ---

func (h *teamHandler) createConfig(w http.ResponseWriter, r *http.Request) {
	var req marketConfigRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	if field := req.missing(); field != "" {
		WriteError(w, r, h.logger, common.Validation(field+" is required"))
		return
	}

	c := &models.MarketConfig{TeamPublicID: *req.TeamID}
	req.patch().Apply(c)

	created, err := h.configs.Create(r.Context(), c)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toMarketConfigResponse(created))
}

func (h *teamHandler) getConfig(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "public_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	c, err := h.configs.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toMarketConfigResponse(c))
}

func (h *teamHandler) getConfigByTeam(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "public_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	c, err := h.configs.GetByTeam(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toMarketConfigResponse(c))
}

// updateConfig applies a partial update. A configuration cannot move to
// another team, so a differing teamid is rejected.
func (h *teamHandler) updateConfig(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "public_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	var req marketConfigRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	if req.TeamID != nil {
		current, err := h.configs.Get(r.Context(), id)
		if err != nil {
			WriteError(w, r, h.logger, err)
			return
		}
		if current.TeamPublicID != *req.TeamID {
			WriteError(w, r, h.logger, common.Validation("teamid cannot be changed"))
			return
		}
	}

	c, err := h.configs.Update(r.Context(), id, req.patch())
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toMarketConfigResponse(c))
}
