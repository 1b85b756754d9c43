// Package memory provides in-memory storage adapters, used by tests and
// ephemeral runs where nothing should touch disk.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driven"
)

// Ensure LabelStore implements the interface.
var _ driven.LabelStore = (*LabelStore)(nil)

// LabelStore is an in-memory implementation of driven.LabelStore.
type LabelStore struct {
	mu       sync.RWMutex
	labels   map[string]domain.Label
	passages map[string][]domain.Passage
}

// NewLabelStore creates a new in-memory label store.
func NewLabelStore() *LabelStore {
	return &LabelStore{
		labels:   make(map[string]domain.Label),
		passages: make(map[string][]domain.Passage),
	}
}

// SaveLabel stores an ingested label.
func (s *LabelStore) SaveLabel(_ context.Context, label *domain.Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.labels[label.ID]; ok {
		return fmt.Errorf("label %s: labels are immutable once ingested", label.ID)
	}
	s.labels[label.ID] = *label
	return nil
}

// GetLabel retrieves a label by ID.
func (s *LabelStore) GetLabel(_ context.Context, id string) (*domain.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	label, ok := s.labels[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &label, nil
}

// FindLabelByDrug returns the most recently ingested matching label.
func (s *LabelStore) FindLabelByDrug(ctx context.Context, drugName string) (*domain.Label, error) {
	matches, err := s.ListLabels(ctx, drugName, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, domain.ErrNotFound
	}
	return &matches[0], nil
}

// ListLabels returns labels matching the drug name, latest first.
func (s *LabelStore) ListLabels(_ context.Context, drugName string, limit int) ([]domain.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(drugName)
	var matches []domain.Label
	for _, label := range s.labels {
		if strings.Contains(strings.ToLower(label.DrugName), needle) {
			matches = append(matches, label)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// SavePassages stores the passages of a label.
func (s *LabelStore) SavePassages(_ context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	labelID := passages[0].LabelID
	stored := make([]domain.Passage, len(passages))
	copy(stored, passages)
	s.passages[labelID] = stored
	return nil
}

// GetPassages retrieves all passages of a label ordered by (section, position).
func (s *LabelStore) GetPassages(_ context.Context, labelID string) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.passages[labelID]
	passages := make([]domain.Passage, len(stored))
	copy(passages, stored)

	sort.Slice(passages, func(i, j int) bool {
		if passages[i].Section != passages[j].Section {
			return passages[i].Section < passages[j].Section
		}
		return passages[i].Position < passages[j].Position
	})
	return passages, nil
}

// GetPassage retrieves a specific passage by ID.
func (s *LabelStore) GetPassage(_ context.Context, id string) (*domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, passages := range s.passages {
		for _, p := range passages {
			if p.ID == id {
				return &p, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// UpdatePassageEmbedding sets the embedding vector of one passage. An
// empty vector is rejected, matching the sqlite store.
func (s *LabelStore) UpdatePassageEmbedding(_ context.Context, passageID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding for passage %s", domain.ErrInvalidInput, passageID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for labelID, passages := range s.passages {
		for i := range passages {
			if passages[i].ID == passageID {
				vector := make([]float32, len(embedding))
				copy(vector, embedding)
				s.passages[labelID][i].Embedding = vector
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

// HasEmbeddings reports whether any passage of the label is embedded.
func (s *LabelStore) HasEmbeddings(_ context.Context, labelID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.passages[labelID] {
		if p.Embedded() {
			return true, nil
		}
	}
	return false, nil
}

// Close releases resources.
func (s *LabelStore) Close() error {
	return nil
}
