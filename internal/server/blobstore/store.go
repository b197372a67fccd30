// Package blobstore keeps uploaded images outside the relational store.
// Blobs are written once and never updated; owners repoint to a new blob.
// Nothing here knows which row references a blob.
package blobstore

import (
	"context"

	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

// Store persists blobs under store-generated ids. Get returns
// common.ErrorNotFound for an unknown or malformed id.
type Store interface {
	Put(ctx context.Context, blob *models.Blob) (string, error)
	Get(ctx context.Context, id string) (*models.Blob, error)
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
