package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pharmaguard/pharmaguard-cli/internal/chunker"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driven"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driving"
	"github.com/pharmaguard/pharmaguard-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService chunks raw labeling records into stored labels.
type IngestService struct {
	store    driven.LabelStore
	registry driven.LabelRegistry
	chunker  *chunker.Chunker
}

// NewIngestService creates an ingest service. The registry is optional;
// without it Resolve only finds already-stored labels.
func NewIngestService(
	store driven.LabelStore,
	registry driven.LabelRegistry,
	ch *chunker.Chunker,
) *IngestService {
	return &IngestService{
		store:    store,
		registry: registry,
		chunker:  ch,
	}
}

// Ingest stores the record as a new label and cuts every non-empty
// section into passages. Sections are chunked in canonical order, then
// any non-canonical sections sorted by name, so passage creation is
// deterministic. Each ingestion produces a new label; existing labels
// are never mutated or superseded in place.
func (s *IngestService) Ingest(ctx context.Context, record domain.LabelRecord) (*domain.Label, error) {
	if record.DrugName == "" {
		return nil, fmt.Errorf("%w: drug name is required", domain.ErrInvalidInput)
	}

	label := &domain.Label{
		ID:            uuid.New().String(),
		DrugName:      record.DrugName,
		SetID:         record.SetID,
		EffectiveTime: record.EffectiveTime,
		Sections:      record.Sections,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.SaveLabel(ctx, label); err != nil {
		return nil, fmt.Errorf("save label for %s: %w", record.DrugName, err)
	}

	var passages []domain.Passage
	for _, section := range sectionOrder(record.Sections) {
		text := record.Sections[section]
		if text == "" {
			continue
		}
		for i, chunk := range s.chunker.Split(text) {
			passages = append(passages, domain.Passage{
				ID:       uuid.New().String(),
				LabelID:  label.ID,
				Section:  section,
				Position: i,
				Text:     chunk,
			})
		}
	}

	if err := s.store.SavePassages(ctx, passages); err != nil {
		return nil, fmt.Errorf("save passages for label %s: %w", label.ID, err)
	}

	logger.Info("Ingested label %s for %s: %d passages", label.ID, label.DrugName, len(passages))
	return label, nil
}

// Resolve returns the latest stored label for the drug name, falling
// back to a registry fetch and ingestion when none is stored.
func (s *IngestService) Resolve(ctx context.Context, drugName string) (*domain.Label, error) {
	label, err := s.store.FindLabelByDrug(ctx, drugName)
	if err == nil {
		return label, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("look up label for %s: %w", drugName, err)
	}

	if s.registry == nil {
		return nil, fmt.Errorf("%w: no label stored for %s", domain.ErrNotFound, drugName)
	}

	logger.Info("No stored label for %s, fetching from registry", drugName)
	record, err := s.registry.Fetch(ctx, drugName)
	if err != nil {
		return nil, fmt.Errorf("fetch label for %s: %w", drugName, err)
	}

	return s.Ingest(ctx, *record)
}

// sectionOrder returns the record's sections in deterministic chunking
// order: canonical sections first, then anything else sorted by name.
func sectionOrder(sections map[domain.Section]string) []domain.Section {
	order := make([]domain.Section, 0, len(sections))
	seen := make(map[domain.Section]bool, len(sections))

	for _, section := range domain.CanonicalSections {
		if _, ok := sections[section]; ok {
			order = append(order, section)
			seen[section] = true
		}
	}

	var extra []domain.Section
	for section := range sections {
		if !seen[section] {
			extra = append(extra, section)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(order, extra...)
}
