package driven

import (
	"context"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

// LabelRegistry fetches raw labeling records from an external registry.
// The core never performs network fetches itself; this port is the
// ingestion collaborator boundary.
type LabelRegistry interface {
	// Fetch retrieves the current labeling record for a drug name.
	// Returns domain.ErrNotFound when the registry has no label for it.
	Fetch(ctx context.Context, drugName string) (*domain.LabelRecord, error)
}
