package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/logging"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/services"
)

// AccountService is what the auth routes need from the account service.
type AccountService interface {
	TokenAuthenticator
	Register(ctx context.Context, in services.RegisterInput) (*models.Account, error)
	Login(ctx context.Context, identifier, password string) (string, error)
	Get(ctx context.Context, id int64) (*models.Account, error)
	Delete(ctx context.Context, id int64) error
}

type authHandler struct {
	accounts AccountService
	logger   logging.Logger
}

// newRouter builds the middleware stack shared by every service.
func newRouter(log logging.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	return r
}

// NewAuthRouter serves registration, login and account lookups.
func NewAuthRouter(log logging.Logger, accounts AccountService, checks ...Check) http.Handler {
	h := &authHandler{accounts: accounts, logger: log}

	r := newRouter(log)
	r.Get("/health", Health("auth", checks...))
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(RequireBearer(accounts, log))
		r.Get("/me", h.me)
		r.Get("/accounts/{id}", h.get)
		r.With(RequireRole(log, models.AdminRoleID)).Delete("/accounts/{id}", h.delete)
	})
	return r
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	account, err := h.accounts.Register(r.Context(), services.RegisterInput{
		EmailAddress: req.EmailAddress,
		Username:     req.Username,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: common.TokenType})
}

func (h *authHandler) me(w http.ResponseWriter, r *http.Request) {
	account, ok := AccountFrom(r.Context())
	if !ok {
		WriteError(w, r, h.logger, common.Unauthorized("missing token"))
		return
	}
	WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

func accountID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.Validation("id invalido")
	}
	return id, nil
}

func (h *authHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *authHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	if err := h.accounts.Delete(r.Context(), id); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteNoContent(w)
}
