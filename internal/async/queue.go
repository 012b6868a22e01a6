package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks for one stored document to be processed.
type Job struct {
	DocumentID  uuid.UUID
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// Handler processes a single document.
type Handler interface {
	Process(ctx context.Context, documentID uuid.UUID) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, documentID uuid.UUID) error

func (f HandlerFunc) Process(ctx context.Context, documentID uuid.UUID) error {
	return f(ctx, documentID)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}
