package httpapi

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/logging"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

// RequestLogger copies the chi request id into the logging context and
// logs one entry per request. It must run after middleware.RequestID.
func RequestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := middleware.GetReqID(ctx); id != "" {
				ctx = logging.WithRequestID(ctx, id)
				r = r.WithContext(ctx)
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info(ctx, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// TokenAuthenticator resolves a bearer token to an account.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Account, error)
}

type accountKey struct{}

// AccountFrom returns the account stored by RequireBearer.
func AccountFrom(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountKey{}).(*models.Account)
	return a, ok
}

// RequireBearer rejects requests without a valid access token.
func RequireBearer(auth TokenAuthenticator, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthorizationHeaderName)
			if len(header) <= len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
				WriteError(w, r, log, common.Unauthorized("missing token"))
				return
			}

			account, err := auth.Authenticate(r.Context(), strings.TrimSpace(header[len(common.BearerPrefix):]))
			if err != nil {
				WriteError(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey{}, account)))
		})
	}
}

// RequireRole lets through only accounts stored by RequireBearer whose role
// is one of roles. Other accounts get 403.
func RequireRole(log logging.Logger, roles ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok := AccountFrom(r.Context())
			if !ok {
				WriteError(w, r, log, common.Unauthorized("missing token"))
				return
			}
			if !slices.Contains(roles, account.RoleID) {
				WriteError(w, r, log, common.Forbidden("Permisos insuficientes"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
