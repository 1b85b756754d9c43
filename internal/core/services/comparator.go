package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driving"
	"github.com/pharmaguard/pharmaguard-cli/internal/logger"
)

// Ensure Comparator implements the interface.
var _ driving.CompareService = (*Comparator)(nil)

// broadInteractionQuery is the fixed query run against both labels in
// addition to the per-side query naming the other drug.
const broadInteractionQuery = "drug interactions anticoagulants aspirin NSAIDs blood thinners"

// maxEvidencePerSide caps the evidence surfaced per label.
const maxEvidencePerSide = 6

// comparisonSummary is attached to every ready comparison. It states
// that the tool surfaces label language, not a clinical determination.
var comparisonSummary = []string{
	"This tool searches FDA label text for interaction-related language.",
	"It may miss cases; labels do not list every interaction.",
	domain.DefaultSafetyNote,
}

// Comparator runs the retriever against two labels with shared
// interaction-oriented queries and produces a side-by-side evidence
// summary.
type Comparator struct {
	resolver      driving.LabelResolver
	index         *Index
	retriever     *Retriever
	minSimilarity float64
}

// NewComparator creates a comparator.
func NewComparator(
	resolver driving.LabelResolver,
	index *Index,
	retriever *Retriever,
	minSimilarity float64,
) *Comparator {
	return &Comparator{
		resolver:      resolver,
		index:         index,
		retriever:     retriever,
		minSimilarity: minSimilarity,
	}
}

// Compare resolves both drugs and builds the comparison result. Workflow
// states are reported in the result's status, not as Go errors:
// resolution failure is status error, missing embeddings is status
// needs_embeddings with both label ids so the caller can embed and
// retry. The two retrievals share no state and run concurrently; a
// failure on one side degrades that side to empty evidence and only a
// failure of both sides produces status error.
func (c *Comparator) Compare(ctx context.Context, drugA, drugB string) (domain.ComparisonResult, error) {
	logger.Section("Label Comparison")
	logger.Debug("Comparing %q and %q", drugA, drugB)

	labelA, err := c.resolver.Resolve(ctx, drugA)
	if err != nil {
		return errorResult(drugA, drugB, fmt.Sprintf("could not resolve a label for %q", drugA)), nil
	}
	labelB, err := c.resolver.Resolve(ctx, drugB)
	if err != nil {
		result := errorResult(drugA, drugB, fmt.Sprintf("could not resolve a label for %q", drugB))
		result.DrugA.LabelID = labelA.ID
		return result, nil
	}

	sideA := domain.ComparisonSide{DrugName: drugA, LabelID: labelA.ID}
	sideB := domain.ComparisonSide{DrugName: drugB, LabelID: labelB.ID}

	hasA, err := c.index.HasEmbeddings(ctx, labelA.ID)
	if err != nil {
		return domain.ComparisonResult{
			Status: domain.ComparisonError, DrugA: sideA, DrugB: sideB,
			Message: fmt.Sprintf("could not check embeddings for label %s", labelA.ID),
		}, nil
	}
	hasB, err := c.index.HasEmbeddings(ctx, labelB.ID)
	if err != nil {
		return domain.ComparisonResult{
			Status: domain.ComparisonError, DrugA: sideA, DrugB: sideB,
			Message: fmt.Sprintf("could not check embeddings for label %s", labelB.ID),
		}, nil
	}
	if !hasA || !hasB {
		logger.Info("Comparison pending embeddings: a=%t b=%t", hasA, hasB)
		return domain.ComparisonResult{
			Status:  domain.ComparisonNeedsEmbeddings,
			DrugA:   sideA,
			DrugB:   sideB,
			Message: "Embed both labels, then compare again.",
		}, nil
	}

	// The two retrievals have no data dependency; run them concurrently
	// and join before composing the summary.
	var evidenceA, evidenceB []domain.EvidenceItem
	var errA, errB error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		evidenceA, errA = c.retrieveSide(ctx, labelA.ID, drugB)
	}()
	go func() {
		defer wg.Done()
		evidenceB, errB = c.retrieveSide(ctx, labelB.ID, drugA)
	}()
	wg.Wait()

	if errA != nil && errB != nil {
		return domain.ComparisonResult{
			Status: domain.ComparisonError, DrugA: sideA, DrugB: sideB,
			Message: "evidence retrieval failed for both labels",
		}, nil
	}
	if errA != nil {
		logger.Warn("Retrieval failed for %s, reporting no evidence for that side: %v", drugA, errA)
		evidenceA = nil
	}
	if errB != nil {
		logger.Warn("Retrieval failed for %s, reporting no evidence for that side: %v", drugB, errB)
		evidenceB = nil
	}

	return domain.ComparisonResult{
		Status:    domain.ComparisonReady,
		DrugA:     sideA,
		DrugB:     sideB,
		Summary:   comparisonSummary,
		EvidenceA: evidenceA,
		EvidenceB: evidenceB,
	}, nil
}

// retrieveSide collects interaction evidence from one label: the query
// naming the other drug first, then the broad interaction query, merged
// without duplicates, ordered by section precedence, and capped.
func (c *Comparator) retrieveSide(ctx context.Context, labelID, otherDrug string) ([]domain.EvidenceItem, error) {
	named := fmt.Sprintf("Does the label mention interactions with %s?", otherDrug)

	primary, err := c.retriever.Retrieve(ctx, labelID, named, maxEvidencePerSide, c.minSimilarity)
	if err != nil {
		return nil, err
	}
	broad, err := c.retriever.Retrieve(ctx, labelID, broadInteractionQuery, maxEvidencePerSide/2, c.minSimilarity)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(primary))
	merged := make([]domain.EvidenceItem, 0, len(primary)+len(broad))
	for _, ev := range append(primary, broad...) {
		if seen[ev.PassageID] {
			continue
		}
		seen[ev.PassageID] = true
		merged = append(merged, ev)
	}

	merged = orderBySectionPrecedence(merged)
	if len(merged) > maxEvidencePerSide {
		merged = merged[:maxEvidencePerSide]
	}
	return merged, nil
}

func errorResult(drugA, drugB, message string) domain.ComparisonResult {
	return domain.ComparisonResult{
		Status:  domain.ComparisonError,
		DrugA:   domain.ComparisonSide{DrugName: drugA},
		DrugB:   domain.ComparisonSide{DrugName: drugB},
		Message: message,
	}
}
