package store

import (
	"context"
	"errors"

	"github.com/photorabbit/backend/internal/model/interview"
	"github.com/photorabbit/backend/internal/model/photo"
)

var (
	ErrProjectNotFound = errors.New("project not found")
)

// MessageStore owns interview transcript persistence. Callers only ever
// append; messages are never mutated or reordered in place.
type MessageStore interface {
	// Append assigns an id and timestamp (when unset) and persists the
	// message, returning the stored copy.
	Append(ctx context.Context, msg interview.Message) (interview.Message, error)
	// AppendBatch persists messages keeping their supplied timestamps, so
	// bulk seeding can fix ordering independent of insertion latency.
	AppendBatch(ctx context.Context, msgs []interview.Message) error
	// ListByProject returns the full transcript ordered by creation time.
	ListByProject(ctx context.Context, projectID string) ([]interview.Message, error)
	// DeleteByProject removes every message for the project.
	DeleteByProject(ctx context.Context, projectID string) error
}

// ProjectStore owns project rows. Deleting a project cascades to its
// messages and photo analyses.
type ProjectStore interface {
	Create(ctx context.Context, p interview.Project) (interview.Project, error)
	Get(ctx context.Context, id string) (interview.Project, error)
	Delete(ctx context.Context, id string) error
}

// PhotoStore owns captioning output.
type PhotoStore interface {
	SaveAnalysis(ctx context.Context, a photo.Analysis) (photo.Analysis, error)
	ListAnalyses(ctx context.Context, projectID string) ([]photo.Analysis, error)
}

// Store aggregates the per-entity repositories a backend must provide.
type Store interface {
	MessageStore
	ProjectStore
	PhotoStore
}
