package httpapi

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/services"
)

const (
	// multipartMemory is kept in memory before parts spill to disk.
	multipartMemory = 8 << 20
	// maxUploadBody caps a multipart request: one image plus form overhead.
	maxUploadBody = services.MaxImageSize + 1<<20
)

// parseMultipart reads at most maxUploadBody bytes of the request body as a
// multipart form.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	err := r.ParseMultipartForm(multipartMemory)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return common.Validation("El archivo excede el tamano maximo")
	case err != nil:
		return common.Validation("se esperaba un formulario multipart")
	}
	return nil
}

// readImage returns the file part named field, or nil when it is absent
// and not required.
func readImage(w http.ResponseWriter, r *http.Request, field string, required bool) (*models.Blob, error) {
	if r.MultipartForm == nil {
		if err := parseMultipart(w, r); err != nil {
			return nil, err
		}
	}

	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		if required {
			return nil, common.Validation("el archivo es obligatorio")
		}
		return nil, nil
	}
	if err != nil {
		return nil, common.Validation("archivo invalido")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxImageSize+1))
	if err != nil {
		return nil, common.Unexpected("read upload", err)
	}

	ct := hdr.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}

	return &models.Blob{
		Filename:    filepath.Base(hdr.Filename),
		ContentType: ct,
		Data:        data,
	}, nil
}

// writeBlob streams an image back with its stored content type.
func writeBlob(w http.ResponseWriter, b *models.Blob) {
	ct := b.ContentType
	if ct == "" {
		ct = http.DetectContentType(b.Data)
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Data)
}

// uuidParam parses the named route parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, common.Validation(name + " no es un UUID valido")
	}
	return id, nil
}
