package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest [drug-name]",
	Short: "Fetch and store a drug label",
	Long: `Fetches the current labeling record for a drug from openFDA, splits
its sections into passages and stores them. Use --file to ingest a local
labeling record instead of fetching one.

Each ingestion creates a new label; existing labels are never modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "ingest a local labeling record (JSON) instead of fetching")
	rootCmd.AddCommand(ingestCmd)
}

// fileRecord is the on-disk shape accepted by --file.
type fileRecord struct {
	DrugName      string                    `json:"drug_name"`
	SetID         string                    `json:"set_id"`
	EffectiveTime string                    `json:"effective_time"`
	Sections      map[domain.Section]string `json:"sections"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()

	var record domain.LabelRecord
	switch {
	case ingestFile != "":
		data, err := os.ReadFile(ingestFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", ingestFile, err)
		}
		var fr fileRecord
		if err := json.Unmarshal(data, &fr); err != nil {
			return fmt.Errorf("failed to parse %s: %w", ingestFile, err)
		}
		record = domain.LabelRecord{
			DrugName:      fr.DrugName,
			SetID:         fr.SetID,
			EffectiveTime: fr.EffectiveTime,
			Sections:      fr.Sections,
		}
		if len(args) > 0 && record.DrugName == "" {
			record.DrugName = args[0]
		}
	case len(args) == 1:
		drugName := args[0]
		cmd.Printf("Fetching label for %s from openFDA...\n", drugName)

		fetched, err := labelRegistry.Fetch(ctx, drugName)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		record = *fetched
	default:
		return errors.New("provide a drug name or --file")
	}

	label, err := ingestService.Ingest(ctx, record)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	passages, err := labelStore.GetPassages(ctx, label.ID)
	if err != nil {
		return fmt.Errorf("failed to read back passages: %w", err)
	}

	cmd.Printf("Ingested %s as label %s (%d sections, %d passages).\n",
		label.DrugName, label.ID, len(label.Sections), len(passages))
	cmd.Printf("Next: pharmaguard embed %s\n", label.ID)
	return nil
}
