// Package driving provides interfaces exposed to external actors (primary/inbound ports).
package driving

import (
	"context"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

// IngestService turns raw labeling records into chunked, stored labels.
type IngestService interface {
	// Ingest chunks and stores a labeling record, producing a new Label.
	// Re-ingesting a drug always creates a new label; existing labels are
	// never mutated.
	Ingest(ctx context.Context, record domain.LabelRecord) (*domain.Label, error)

	// Resolve returns the latest stored label for a drug name, fetching
	// and ingesting it from the registry when none is stored yet.
	Resolve(ctx context.Context, drugName string) (*domain.Label, error)
}

// LabelResolver resolves a drug name to an ingested label.
// Satisfied by IngestService; the comparator depends on this narrower view.
type LabelResolver interface {
	Resolve(ctx context.Context, drugName string) (*domain.Label, error)
}
