package services

import (
	"context"
	"fmt"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driven"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driving"
)

// Ensure QAService implements the interface.
var _ driving.QAService = (*QAService)(nil)

// DefaultTopK is the default number of passages retrieved per question.
const DefaultTopK = 6

// QAService answers questions about one label strictly from its text.
type QAService struct {
	store         driven.LabelStore
	retriever     *Retriever
	composer      *Composer
	topK          int
	minSimilarity float64
}

// NewQAService creates a Q&A service. topK <= 0 falls back to
// DefaultTopK. minSimilarity is deployment-specific because embedding
// models produce differently distributed scores.
func NewQAService(
	store driven.LabelStore,
	retriever *Retriever,
	composer *Composer,
	topK int,
	minSimilarity float64,
) *QAService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QAService{
		store:         store,
		retriever:     retriever,
		composer:      composer,
		topK:          topK,
		minSimilarity: minSimilarity,
	}
}

// Ask retrieves evidence for the question and composes a cited answer.
// A label with no embedded passages gets the fallback answer rather than
// an error; a missing label is domain.ErrNotFound.
func (s *QAService) Ask(ctx context.Context, labelID, question string) (domain.AnswerResult, error) {
	if _, err := s.store.GetLabel(ctx, labelID); err != nil {
		return domain.AnswerResult{}, fmt.Errorf("label %s: %w", labelID, err)
	}

	evidence, err := s.retriever.Retrieve(ctx, labelID, question, s.topK, s.minSimilarity)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("retrieve evidence for label %s: %w", labelID, err)
	}

	return s.composer.Compose(question, evidence), nil
}

// GetPassage returns a passage's full text for citation drill-down.
func (s *QAService) GetPassage(ctx context.Context, passageID string) (*domain.Passage, error) {
	passage, err := s.store.GetPassage(ctx, passageID)
	if err != nil {
		return nil, fmt.Errorf("passage %s: %w", passageID, err)
	}
	return passage, nil
}
