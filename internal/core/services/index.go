// Package services implements the core retrieval pipeline: ingestion,
// embedding indexing, evidence retrieval, answer composition, and
// two-label comparison.
package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driven"
	"github.com/pharmaguard/pharmaguard-cli/internal/logger"
)

// ScoredPassage pairs a passage with its similarity to a query vector.
type ScoredPassage struct {
	Passage domain.Passage
	Score   float64
}

// Index computes and searches passage embeddings for stored labels.
// Retrieval is read-only; embedding computation for one label is
// serialised through a per-label exclusive section so concurrent callers
// never duplicate model work.
type Index struct {
	store    driven.LabelStore
	embedder driven.EmbeddingService

	// labelLocks holds one mutex per label with an embedding run in
	// flight. The second caller for the same label waits and then
	// observes the first caller's result as already-embedded passages.
	// Entries are retained for the life of the Index, so a long-lived
	// host embedding many labels holds one idle mutex per label id.
	mu         sync.Mutex
	labelLocks map[string]*sync.Mutex
}

// NewIndex creates an embedding index over the given store and model.
func NewIndex(store driven.LabelStore, embedder driven.EmbeddingService) *Index {
	return &Index{
		store:      store,
		embedder:   embedder,
		labelLocks: make(map[string]*sync.Mutex),
	}
}

// Dimensions returns the process-wide embedding dimension.
func (ix *Index) Dimensions() int {
	return ix.embedder.Dimensions()
}

// EmbedLabel computes embeddings for every passage of the label lacking
// one. Already-embedded passages are skipped unless force is set. Each
// vector is persisted as soon as it is computed, so a failure or
// cancellation midway leaves earlier passages embedded and the run safe
// to resume. Returns the count of newly embedded passages.
func (ix *Index) EmbedLabel(ctx context.Context, labelID string, force bool) (int, error) {
	lock := ix.lockFor(labelID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := ix.store.GetLabel(ctx, labelID); err != nil {
		return 0, fmt.Errorf("label %s: %w", labelID, err)
	}

	passages, err := ix.store.GetPassages(ctx, labelID)
	if err != nil {
		return 0, fmt.Errorf("load passages for label %s: %w", labelID, err)
	}

	want := ix.embedder.Dimensions()
	embedded := 0

	for i := range passages {
		p := &passages[i]
		if p.Embedded() && !force {
			continue
		}
		if err := ctx.Err(); err != nil {
			return embedded, fmt.Errorf("%w: label %s: %w", domain.ErrEmbedding, labelID, err)
		}

		vector, err := ix.embedder.Embed(ctx, p.Text)
		if err != nil {
			return embedded, fmt.Errorf("%w: label %s section %s passage %d: %w",
				domain.ErrEmbedding, labelID, p.Section, p.Position, err)
		}
		if len(vector) != want {
			return embedded, fmt.Errorf("%w: label %s section %s passage %d: got %d, want %d",
				domain.ErrDimensionMismatch, labelID, p.Section, p.Position, len(vector), want)
		}

		if err := ix.store.UpdatePassageEmbedding(ctx, p.ID, vector); err != nil {
			return embedded, fmt.Errorf("%w: store vector for passage %s: %w",
				domain.ErrEmbedding, p.ID, err)
		}
		embedded++
	}

	logger.Info("Embedded %d passages for label %s (%d already present)",
		embedded, labelID, len(passages)-embedded)
	return embedded, nil
}

// Nearest returns the k passages of the label most similar to the query
// vector, descending by cosine similarity with ties broken by ascending
// (section, position) so rankings are reproducible. Fewer than k embedded
// passages returns all of them; none returns an empty result, not an
// error.
func (ix *Index) Nearest(ctx context.Context, labelID string, query []float32, k int) ([]ScoredPassage, error) {
	if len(query) != ix.embedder.Dimensions() {
		return nil, fmt.Errorf("%w: query has %d dimensions, index uses %d",
			domain.ErrDimensionMismatch, len(query), ix.embedder.Dimensions())
	}

	passages, err := ix.store.GetPassages(ctx, labelID)
	if err != nil {
		return nil, fmt.Errorf("load passages for label %s: %w", labelID, err)
	}

	scored := make([]ScoredPassage, 0, len(passages))
	for _, p := range passages {
		if !p.Embedded() {
			continue
		}
		scored = append(scored, ScoredPassage{
			Passage: p,
			Score:   cosineSimilarity(query, p.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Passage.Section != scored[j].Passage.Section {
			return scored[i].Passage.Section < scored[j].Passage.Section
		}
		return scored[i].Passage.Position < scored[j].Passage.Position
	})

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// HasEmbeddings reports whether the label has any embedded passages.
func (ix *Index) HasEmbeddings(ctx context.Context, labelID string) (bool, error) {
	return ix.store.HasEmbeddings(ctx, labelID)
}

// lockFor returns the exclusive section for a label, creating it on
// first use.
func (ix *Index) lockFor(labelID string) *sync.Mutex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	lock, ok := ix.labelLocks[labelID]
	if !ok {
		lock = &sync.Mutex{}
		ix.labelLocks[labelID] = lock
	}
	return lock
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero-length or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
