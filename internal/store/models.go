package store

import (
	"context"
	"time"
)

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Document is an uploaded file kept for follow-up questions. Content holds the
// extracted text for KindText and the base64-encoded file for KindImage.
type Document struct {
	Filename  string    `json:"filename"`
	Kind      Kind      `json:"kind"`
	Content   string    `json:"content"`
	MIMEType  string    `json:"mime_type"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentStore maps filenames to documents. A Put for an existing filename
// replaces the previous document.
type DocumentStore interface {
	Put(ctx context.Context, doc Document) error
	// Get returns the document and true, or a zero Document and false when
	// nothing was stored under filename.
	Get(ctx context.Context, filename string) (Document, bool, error)
	Close() error
}
