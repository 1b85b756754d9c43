// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

// LabelStore persists labels, passages, and embeddings.
// Backed by SQLite; an in-memory implementation exists for tests.
type LabelStore interface {
	// SaveLabel stores an ingested label. Labels are immutable; saving an
	// existing id is an error.
	SaveLabel(ctx context.Context, label *domain.Label) error

	// GetLabel retrieves a label by ID.
	GetLabel(ctx context.Context, id string) (*domain.Label, error)

	// FindLabelByDrug returns the most recently ingested label whose drug
	// name contains the given name (case-insensitive).
	FindLabelByDrug(ctx context.Context, drugName string) (*domain.Label, error)

	// ListLabels returns labels matching the drug name, latest first.
	ListLabels(ctx context.Context, drugName string, limit int) ([]domain.Label, error)

	// SavePassages stores the passages of a label.
	SavePassages(ctx context.Context, passages []domain.Passage) error

	// GetPassages retrieves all passages of a label ordered by
	// (section, position).
	GetPassages(ctx context.Context, labelID string) ([]domain.Passage, error)

	// GetPassage retrieves a specific passage by ID.
	GetPassage(ctx context.Context, id string) (*domain.Passage, error)

	// UpdatePassageEmbedding sets the embedding vector of one passage.
	// Empty vectors are rejected with ErrInvalidInput; dimension
	// consistency is the caller's responsibility.
	UpdatePassageEmbedding(ctx context.Context, passageID string, embedding []float32) error

	// HasEmbeddings reports whether at least one passage of the label
	// carries an embedding.
	HasEmbeddings(ctx context.Context, labelID string) (bool, error)

	// Close releases resources.
	Close() error
}
