package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard/pharmaguard-cli/internal/adapters/driven/storage/memory"
	"github.com/pharmaguard/pharmaguard-cli/internal/chunker"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driven"
)

// mockRegistry implements driven.LabelRegistry from a fixed map.
type mockRegistry struct {
	records map[string]*domain.LabelRecord
	fetches int
}

func (m *mockRegistry) Fetch(_ context.Context, drugName string) (*domain.LabelRecord, error) {
	m.fetches++
	record, ok := m.records[drugName]
	if !ok {
		return nil, fmt.Errorf("%w: no registry record for %q", domain.ErrNotFound, drugName)
	}
	return record, nil
}

func newIngestFixture(t *testing.T, registry *mockRegistry) (*IngestService, *memory.LabelStore) {
	t.Helper()
	store := memory.NewLabelStore()
	ch, err := chunker.New(120, 30)
	require.NoError(t, err)

	// A typed nil would defeat the service's registry presence check.
	var reg driven.LabelRegistry
	if registry != nil {
		reg = registry
	}
	return NewIngestService(store, reg, ch), store
}

func aspirinRecord() domain.LabelRecord {
	return domain.LabelRecord{
		DrugName:      "aspirin",
		SetID:         "set-123",
		EffectiveTime: "20240115",
		Sections: map[domain.Section]string{
			domain.SectionWarnings:         "Bleeding risk is increased. Stop use before surgery.",
			domain.SectionDrugInteractions: "Interacts with warfarin. Interacts with ibuprofen.",
		},
	}
}

func TestIngestService_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("stores label and chunked passages", func(t *testing.T) {
		svc, store := newIngestFixture(t, nil)

		label, err := svc.Ingest(ctx, aspirinRecord())

		require.NoError(t, err)
		assert.NotEmpty(t, label.ID)
		assert.Equal(t, "aspirin", label.DrugName)
		assert.Equal(t, "set-123", label.SetID)
		assert.False(t, label.CreatedAt.IsZero())

		passages, err := store.GetPassages(ctx, label.ID)
		require.NoError(t, err)
		require.NotEmpty(t, passages)
		for _, p := range passages {
			assert.Equal(t, label.ID, p.LabelID)
			assert.False(t, p.Embedded(), "ingestion must not embed")
			assert.Contains(t, label.Sections[p.Section], strings.TrimSpace(p.Text),
				"passage must be verbatim section text")
		}
	})

	t.Run("positions start at zero per section", func(t *testing.T) {
		svc, store := newIngestFixture(t, nil)

		label, err := svc.Ingest(ctx, aspirinRecord())
		require.NoError(t, err)

		passages, err := store.GetPassages(ctx, label.ID)
		require.NoError(t, err)

		first := make(map[domain.Section]int)
		for _, p := range passages {
			if current, ok := first[p.Section]; !ok || p.Position < current {
				first[p.Section] = p.Position
			}
		}
		for section, position := range first {
			assert.Zero(t, position, "section %s must start at position 0", section)
		}
	})

	t.Run("empty sections produce no passages", func(t *testing.T) {
		svc, store := newIngestFixture(t, nil)

		record := aspirinRecord()
		record.Sections[domain.SectionContraindications] = ""

		label, err := svc.Ingest(ctx, record)
		require.NoError(t, err)

		passages, err := store.GetPassages(ctx, label.ID)
		require.NoError(t, err)
		for _, p := range passages {
			assert.NotEqual(t, domain.SectionContraindications, p.Section)
		}
	})

	t.Run("missing drug name", func(t *testing.T) {
		svc, _ := newIngestFixture(t, nil)

		_, err := svc.Ingest(ctx, domain.LabelRecord{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("re-ingestion creates a new label", func(t *testing.T) {
		svc, _ := newIngestFixture(t, nil)

		first, err := svc.Ingest(ctx, aspirinRecord())
		require.NoError(t, err)
		second, err := svc.Ingest(ctx, aspirinRecord())
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestIngestService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored label without fetching", func(t *testing.T) {
		registry := &mockRegistry{records: map[string]*domain.LabelRecord{}}
		svc, _ := newIngestFixture(t, registry)

		ingested, err := svc.Ingest(ctx, aspirinRecord())
		require.NoError(t, err)

		resolved, err := svc.Resolve(ctx, "aspirin")
		require.NoError(t, err)
		assert.Equal(t, ingested.ID, resolved.ID)
		assert.Zero(t, registry.fetches, "stored label must not trigger a fetch")
	})

	t.Run("fetches and ingests unknown drug", func(t *testing.T) {
		record := aspirinRecord()
		registry := &mockRegistry{records: map[string]*domain.LabelRecord{
			"aspirin": &record,
		}}
		svc, store := newIngestFixture(t, registry)

		resolved, err := svc.Resolve(ctx, "aspirin")
		require.NoError(t, err)
		assert.Equal(t, "aspirin", resolved.DrugName)
		assert.Equal(t, 1, registry.fetches)

		passages, err := store.GetPassages(ctx, resolved.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, passages, "fetched label must be chunked")
	})

	t.Run("unknown drug without registry", func(t *testing.T) {
		svc, _ := newIngestFixture(t, nil)

		_, err := svc.Resolve(ctx, "nosuchdrug")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown drug not in registry", func(t *testing.T) {
		registry := &mockRegistry{records: map[string]*domain.LabelRecord{}}
		svc, _ := newIngestFixture(t, registry)

		_, err := svc.Resolve(ctx, "nosuchdrug")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
