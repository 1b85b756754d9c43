package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard/pharmaguard-cli/internal/adapters/driven/storage/memory"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService with deterministic
// per-text vectors.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	dims     int
	embedErr error
	failAt   int // fail on the Nth Embed call when > 0
	calls    int
}

func newMockEmbedder(dims int) *mockEmbedder {
	fallback := make([]float32, dims)
	fallback[0] = 1
	return &mockEmbedder{
		vectors:  make(map[string][]float32),
		fallback: fallback,
		dims:     dims,
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failAt > 0 && m.calls >= m.failAt {
		return nil, errors.New("model offline")
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }

func (m *mockEmbedder) ModelName() string { return "mock-embedder" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Test helpers ---

// vec builds a 3-dimensional unit-ish vector for similarity tests.
func vec(x, y, z float32) []float32 { return []float32{x, y, z} }

func seedLabel(t *testing.T, store *memory.LabelStore, drugName string, passages ...domain.Passage) *domain.Label {
	t.Helper()

	label := &domain.Label{
		ID:        drugName + "-label",
		DrugName:  drugName,
		Sections:  map[domain.Section]string{},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveLabel(context.Background(), label))

	for i := range passages {
		passages[i].LabelID = label.ID
		label.Sections[passages[i].Section] = ""
	}
	if len(passages) > 0 {
		require.NoError(t, store.SavePassages(context.Background(), passages))
	}
	return label
}

func passage(id string, section domain.Section, position int, text string, embedding []float32) domain.Passage {
	return domain.Passage{
		ID:        id,
		Section:   section,
		Position:  position,
		Text:      text,
		Embedding: embedding,
	}
}

// --- EmbedLabel ---

func TestIndex_EmbedLabel(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds all pending passages", func(t *testing.T) {
		store := memory.NewLabelStore()
		embedder := newMockEmbedder(3)
		label := seedLabel(t, store, "aspirin",
			passage("p1", domain.SectionWarnings, 0, "Bleeding risk.", nil),
			passage("p2", domain.SectionWarnings, 1, "Ulcer risk.", nil),
		)

		index := NewIndex(store, embedder)
		count, err := index.EmbedLabel(ctx, label.ID, false)

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, 2, embedder.callCount())

		stored, err := store.GetPassages(ctx, label.ID)
		require.NoError(t, err)
		for _, p := range stored {
			assert.True(t, p.Embedded(), "passage %s should be embedded", p.ID)
		}
	})

	t.Run("second run embeds nothing", func(t *testing.T) {
		store := memory.NewLabelStore()
		embedder := newMockEmbedder(3)
		label := seedLabel(t, store, "aspirin",
			passage("p1", domain.SectionWarnings, 0, "Bleeding risk.", nil),
		)
		index := NewIndex(store, embedder)

		_, err := index.EmbedLabel(ctx, label.ID, false)
		require.NoError(t, err)

		count, err := index.EmbedLabel(ctx, label.ID, false)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Equal(t, 1, embedder.callCount(), "already embedded passages must not hit the model")
	})

	t.Run("force re-embeds everything", func(t *testing.T) {
		store := memory.NewLabelStore()
		embedder := newMockEmbedder(3)
		label := seedLabel(t, store, "aspirin",
			passage("p1", domain.SectionWarnings, 0, "Bleeding risk.", vec(1, 0, 0)),
		)
		index := NewIndex(store, embedder)

		count, err := index.EmbedLabel(ctx, label.ID, true)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, embedder.callCount())
	})

	t.Run("failure keeps earlier vectors", func(t *testing.T) {
		store := memory.NewLabelStore()
		embedder := newMockEmbedder(3)
		embedder.failAt = 2
		label := seedLabel(t, store, "aspirin",
			passage("p1", domain.SectionWarnings, 0, "First.", nil),
			passage("p2", domain.SectionWarnings, 1, "Second.", nil),
			passage("p3", domain.SectionWarnings, 2, "Third.", nil),
		)
		index := NewIndex(store, embedder)

		count, err := index.EmbedLabel(ctx, label.ID, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmbedding)
		assert.Equal(t, 1, count)

		stored, err := store.GetPassages(ctx, label.ID)
		require.NoError(t, err)
		assert.True(t, stored[0].Embedded(), "first passage should keep its vector")
		assert.False(t, stored[1].Embedded())

		// Resume embeds only the remainder.
		embedder.failAt = 0
		count, err = index.EmbedLabel(ctx, label.ID, false)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		store := memory.NewLabelStore()
		embedder := newMockEmbedder(3)
		embedder.vectors["Bad vector."] = []float32{1, 0}
		label := seedLabel(t, store, "aspirin",
			passage("p1", domain.SectionWarnings, 0, "Bad vector.", nil),
		)
		index := NewIndex(store, embedder)

		_, err := index.EmbedLabel(ctx, label.ID, false)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("missing label", func(t *testing.T) {
		store := memory.NewLabelStore()
		index := NewIndex(store, newMockEmbedder(3))

		_, err := index.EmbedLabel(ctx, "no-such-label", false)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("concurrent runs do not duplicate model calls", func(t *testing.T) {
		store := memory.NewLabelStore()
		embedder := newMockEmbedder(3)
		label := seedLabel(t, store, "aspirin",
			passage("p1", domain.SectionWarnings, 0, "One.", nil),
			passage("p2", domain.SectionWarnings, 1, "Two.", nil),
			passage("p3", domain.SectionWarnings, 2, "Three.", nil),
		)
		index := NewIndex(store, embedder)

		var wg sync.WaitGroup
		counts := make([]int, 4)
		errs := make([]error, 4)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				counts[i], errs[i] = index.EmbedLabel(ctx, label.ID, false)
			}(i)
		}
		wg.Wait()

		sum := 0
		for i := range counts {
			require.NoError(t, errs[i])
			sum += counts[i]
		}
		assert.Equal(t, 3, sum, "each passage embedded exactly once across callers")
		assert.Equal(t, 3, embedder.callCount())
	})
}

// --- Nearest ---

func TestIndex_Nearest(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by similarity descending", func(t *testing.T) {
		store := memory.NewLabelStore()
		label := seedLabel(t, store, "aspirin",
			passage("far", domain.SectionWarnings, 0, "far", vec(0, 1, 0)),
			passage("near", domain.SectionWarnings, 1, "near", vec(1, 0, 0)),
			passage("mid", domain.SectionWarnings, 2, "mid", vec(1, 1, 0)),
		)
		index := NewIndex(store, newMockEmbedder(3))

		got, err := index.Nearest(ctx, label.ID, vec(1, 0, 0), 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "near", got[0].Passage.ID)
		assert.Equal(t, "mid", got[1].Passage.ID)
		assert.Equal(t, "far", got[2].Passage.ID)
		assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	})

	t.Run("ties break by section then position", func(t *testing.T) {
		store := memory.NewLabelStore()
		same := vec(1, 0, 0)
		label := seedLabel(t, store, "aspirin",
			passage("w1", domain.SectionWarnings, 1, "w1", same),
			passage("a0", domain.SectionAdverseReactions, 0, "a0", same),
			passage("w0", domain.SectionWarnings, 0, "w0", same),
		)
		index := NewIndex(store, newMockEmbedder(3))

		got, err := index.Nearest(ctx, label.ID, same, 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		// Identical scores: ascending section name, then position.
		assert.Equal(t, "a0", got[0].Passage.ID)
		assert.Equal(t, "w0", got[1].Passage.ID)
		assert.Equal(t, "w1", got[2].Passage.ID)
	})

	t.Run("skips unembedded passages", func(t *testing.T) {
		store := memory.NewLabelStore()
		label := seedLabel(t, store, "aspirin",
			passage("embedded", domain.SectionWarnings, 0, "embedded", vec(1, 0, 0)),
			passage("pending", domain.SectionWarnings, 1, "pending", nil),
		)
		index := NewIndex(store, newMockEmbedder(3))

		got, err := index.Nearest(ctx, label.ID, vec(1, 0, 0), 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "embedded", got[0].Passage.ID)
	})

	t.Run("caps at k", func(t *testing.T) {
		store := memory.NewLabelStore()
		label := seedLabel(t, store, "aspirin",
			passage("p1", domain.SectionWarnings, 0, "p1", vec(1, 0, 0)),
			passage("p2", domain.SectionWarnings, 1, "p2", vec(1, 1, 0)),
			passage("p3", domain.SectionWarnings, 2, "p3", vec(0, 1, 0)),
		)
		index := NewIndex(store, newMockEmbedder(3))

		got, err := index.Nearest(ctx, label.ID, vec(1, 0, 0), 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("no embedded passages is empty, not an error", func(t *testing.T) {
		store := memory.NewLabelStore()
		label := seedLabel(t, store, "aspirin",
			passage("p1", domain.SectionWarnings, 0, "p1", nil),
		)
		index := NewIndex(store, newMockEmbedder(3))

		got, err := index.Nearest(ctx, label.ID, vec(1, 0, 0), 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		store := memory.NewLabelStore()
		label := seedLabel(t, store, "aspirin")
		index := NewIndex(store, newMockEmbedder(3))

		_, err := index.Nearest(ctx, label.ID, []float32{1, 0}, 10)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity(vec(1, 0, 0), vec(2, 0, 0)), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity(vec(1, 0, 0), vec(0, 1, 0)), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity(vec(1, 0, 0), vec(-1, 0, 0)), 1e-9)
	assert.Zero(t, cosineSimilarity(vec(0, 0, 0), vec(1, 0, 0)), "zero vector scores zero")
	assert.Zero(t, cosineSimilarity([]float32{1}, vec(1, 0, 0)), "length mismatch scores zero")
	assert.Zero(t, cosineSimilarity(nil, nil))
}
