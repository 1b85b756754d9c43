package openfda

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

func TestFetch_EmptyDrugName(t *testing.T) {
	client := NewClient(Config{})

	_, err := client.Fetch(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestToRecord(t *testing.T) {
	t.Run("maps labeling sections", func(t *testing.T) {
		result := labelResult{
			SetID:         "set-abc",
			EffectiveTime: "20240115",
			Interactions:  []string{"7 DRUG INTERACTIONS", "Interacts with warfarin."},
			Warnings:      []string{"Bleeding risk."},
		}

		record := toRecord("aspirin", result)

		assert.Equal(t, "aspirin", record.DrugName)
		assert.Equal(t, "set-abc", record.SetID)
		assert.Equal(t, "20240115", record.EffectiveTime)

		require.Len(t, record.Sections, 2)
		assert.Equal(t, "7 DRUG INTERACTIONS\nInteracts with warfarin.",
			record.Sections[domain.SectionDrugInteractions])
		assert.Equal(t, "Bleeding risk.", record.Sections[domain.SectionWarnings])
	})

	t.Run("drops empty sections", func(t *testing.T) {
		result := labelResult{
			Warnings: []string{"  "},
			Contra:   nil,
			Dosage:   []string{"Take 81 mg daily."},
		}

		record := toRecord("aspirin", result)

		require.Len(t, record.Sections, 1)
		assert.Contains(t, record.Sections, domain.SectionDosageAndAdministration)
	})
}
