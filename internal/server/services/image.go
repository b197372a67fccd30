package services

import (
	"strings"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

func validateImage(b *models.Blob) error {
	if b == nil || len(b.Data) == 0 {
		return common.Validation("El archivo esta vacio")
	}
	if len(b.Data) > MaxImageSize {
		return common.Validation("La imagen excede el tamano maximo permitido")
	}
	if !strings.HasPrefix(b.ContentType, "image/") {
		return common.Validation("El archivo debe ser una imagen")
	}
	return nil
}
