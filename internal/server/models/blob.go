package models

// Blob is an uploaded binary payload. ID is assigned by the blob store.
type Blob struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
}
