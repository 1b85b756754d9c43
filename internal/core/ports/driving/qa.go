package driving

import (
	"context"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

// QAService answers questions about one label from its own text.
type QAService interface {
	// Ask retrieves evidence for the question from the label's passages
	// and composes a citation-bearing answer. A label with no embedded
	// passages yields the fallback answer, not an error.
	Ask(ctx context.Context, labelID, question string) (domain.AnswerResult, error)

	// GetPassage returns the full text of a cited passage.
	GetPassage(ctx context.Context, passageID string) (*domain.Passage, error)
}

// EmbedService computes passage embeddings for stored labels.
type EmbedService interface {
	// EmbedLabel embeds every passage of the label lacking a vector.
	// Idempotent unless force is set; returns the newly embedded count.
	EmbedLabel(ctx context.Context, labelID string, force bool) (int, error)
}

// CompareService runs a two-label comparison.
type CompareService interface {
	// Compare resolves both drugs and produces a side-by-side evidence
	// summary. A needs_embeddings or error status is reported in the
	// result, not as a Go error.
	Compare(ctx context.Context, drugA, drugB string) (domain.ComparisonResult, error)
}
