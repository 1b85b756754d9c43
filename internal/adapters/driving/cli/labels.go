package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	labelsJSON  bool
	labelsDrug  string
	labelsLimit int
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List stored drug labels",
	Long: `Lists all ingested labels, newest first, with their embedding state.
Label ids are the handles used by embed, ask and passage.`,
	Args: cobra.NoArgs,
	RunE: runLabels,
}

func init() {
	labelsCmd.Flags().BoolVar(&labelsJSON, "json", false, "output labels as JSON")
	labelsCmd.Flags().StringVar(&labelsDrug, "drug", "", "only list labels for this drug name")
	labelsCmd.Flags().IntVarP(&labelsLimit, "limit", "n", 20, "maximum number of labels")
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(cmd *cobra.Command, _ []string) error {
	if labelStore == nil {
		return errors.New("label store not configured")
	}

	ctx := context.Background()

	labels, err := labelStore.ListLabels(ctx, labelsDrug, labelsLimit)
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}

	type labelRow struct {
		ID            string `json:"label_id"`
		DrugName      string `json:"drug_name"`
		SetID         string `json:"set_id,omitempty"`
		EffectiveTime string `json:"effective_time,omitempty"`
		Sections      int    `json:"sections"`
		Embedded      bool   `json:"embedded"`
		CreatedAt     string `json:"created_at"`
	}

	rows := make([]labelRow, 0, len(labels))
	for _, label := range labels {
		embedded, err := labelStore.HasEmbeddings(ctx, label.ID)
		if err != nil {
			return fmt.Errorf("failed to check embeddings for %s: %w", label.ID, err)
		}
		rows = append(rows, labelRow{
			ID:            label.ID,
			DrugName:      label.DrugName,
			SetID:         label.SetID,
			EffectiveTime: label.EffectiveTime,
			Sections:      len(label.Sections),
			Embedded:      embedded,
			CreatedAt:     label.CreatedAt.Format(time.RFC3339),
		})
	}

	if labelsJSON {
		return outputJSON(cmd, rows)
	}

	if len(rows) == 0 {
		cmd.Println("No labels stored. Run 'pharmaguard ingest <drug-name>' first.")
		return nil
	}

	for _, row := range rows {
		state := "not embedded"
		if row.Embedded {
			state = "embedded"
		}
		cmd.Printf("  %s  %s (%d sections, %s, ingested %s)\n",
			row.ID, row.DrugName, row.Sections, state, row.CreatedAt)
	}
	return nil
}
