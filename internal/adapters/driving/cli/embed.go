package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var embedForce bool

var embedCmd = &cobra.Command{
	Use:   "embed [label-id]",
	Short: "Compute embeddings for a label's passages",
	Long: `Computes embedding vectors for every passage of the label that does
not have one yet. Safe to re-run: already embedded passages are skipped
unless --force is set. An interrupted run keeps the vectors it already
stored, so re-running only embeds the remainder.`,
	Args: cobra.ExactArgs(1),
	RunE: runEmbed,
}

func init() {
	embedCmd.Flags().BoolVar(&embedForce, "force", false, "re-embed passages that already have vectors")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	if err := ensureEmbedding(); err != nil {
		return err
	}

	labelID := args[0]
	ctx := context.Background()

	cmd.Printf("Embedding passages for label %s...\n", labelID)

	count, err := embedService.EmbedLabel(ctx, labelID, embedForce)
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}

	if count == 0 {
		cmd.Println("All passages already embedded.")
	} else {
		cmd.Printf("Embedded %d passages.\n", count)
	}
	return nil
}
