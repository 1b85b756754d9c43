package services

import (
	"context"
	"fmt"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driven"
	"github.com/pharmaguard/pharmaguard-cli/internal/logger"
)

// Retriever turns a natural-language question into ranked, thresholded
// evidence from one label's embedding index.
type Retriever struct {
	index    *Index
	embedder driven.EmbeddingService
}

// NewRetriever creates a retriever over the given index. The question is
// embedded with the same model as the passages so scores are comparable.
func NewRetriever(index *Index, embedder driven.EmbeddingService) *Retriever {
	return &Retriever{index: index, embedder: embedder}
}

// Retrieve returns up to k evidence items for the question, dropping
// passages scoring below minSimilarity. A label with no embedded
// passages yields an empty slice and no error; that is the caller's
// signal to report "no evidence available". The threshold keeps
// low-relevance passages from manufacturing spurious citations.
func (r *Retriever) Retrieve(
	ctx context.Context, labelID, question string, k int, minSimilarity float64,
) ([]domain.EvidenceItem, error) {
	logger.Section("Evidence Retrieval")
	logger.Debug("Label: %s, question: %q", labelID, question)

	query, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %w", domain.ErrEmbedding, err)
	}

	scored, err := r.index.Nearest(ctx, labelID, query, k)
	if err != nil {
		return nil, err
	}
	logger.Debug("Nearest returned %d passages", len(scored))

	evidence := make([]domain.EvidenceItem, 0, len(scored))
	for _, sp := range scored {
		if sp.Score < minSimilarity {
			continue
		}
		evidence = append(evidence, domain.EvidenceItem{
			PassageID: sp.Passage.ID,
			Section:   sp.Passage.Section,
			Position:  sp.Passage.Position,
			Preview:   domain.MakePreview(sp.Passage.Text),
			Score:     sp.Score,
			Text:      sp.Passage.Text,
		})
	}

	logger.Info("Retrieved %d evidence items above threshold %.2f", len(evidence), minSimilarity)
	return evidence, nil
}
