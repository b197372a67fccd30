// Package httpapi is the HTTP transport of the aureum services: chi
// routers, request decoding, wire types and the single mapping of error
// kinds to status codes.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/logging"
)

// maxJSONBody bounds decoded request bodies.
const maxJSONBody = 1 << 20

type errorResponse struct {
	Detail string `json:"detail"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON decodes the body of r into v. Unknown fields and trailing data
// are rejected as validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return common.Validation("request body is empty")
		}
		return common.Validation("invalid request body: " + err.Error())
	}
	if dec.More() {
		return common.Validation("invalid request body: unexpected data after JSON value")
	}
	return nil
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind common.Kind) int {
	switch kind {
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindUnauthorized:
		return http.StatusUnauthorized
	case common.KindForbidden:
		return http.StatusForbidden
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindConflict:
		return http.StatusConflict
	case common.KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError reports err as {"detail": ...}. Unexpected failures are logged
// with their cause and answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	kind := common.KindOf(err)
	status := StatusFor(kind)

	switch {
	case status >= http.StatusInternalServerError:
		log.Error(r.Context(), "request failed", "kind", kind.String(), "error", err)
	default:
		log.Debug(r.Context(), "request rejected", "kind", kind.String(), "error", err)
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteJSON(w, status, errorResponse{Detail: common.MessageOf(err)})
}
