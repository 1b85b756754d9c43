package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var passageJSON bool

var passageCmd = &cobra.Command{
	Use:   "passage [passage-id]",
	Short: "Show the full text of a cited passage",
	Long: `Prints the verbatim label text behind a citation, so an answer line
can be checked against the label itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runPassage,
}

func init() {
	passageCmd.Flags().BoolVar(&passageJSON, "json", false, "output the passage as JSON")
	rootCmd.AddCommand(passageCmd)
}

func runPassage(cmd *cobra.Command, args []string) error {
	if labelStore == nil {
		return errors.New("label store not configured")
	}

	ctx := context.Background()

	passage, err := labelStore.GetPassage(ctx, args[0])
	if err != nil {
		return fmt.Errorf("passage lookup failed: %w", err)
	}

	if passageJSON {
		return outputJSON(cmd, struct {
			ID       string `json:"chunk_id"`
			LabelID  string `json:"label_id"`
			Section  string `json:"section"`
			Position int    `json:"chunk_index"`
			Text     string `json:"text"`
			Embedded bool   `json:"embedded"`
		}{
			ID:       passage.ID,
			LabelID:  passage.LabelID,
			Section:  string(passage.Section),
			Position: passage.Position,
			Text:     passage.Text,
			Embedded: passage.Embedded(),
		})
	}

	cmd.Printf("Passage %s (label %s, %s #%d)\n", passage.ID, passage.LabelID,
		passage.Section, passage.Position)
	cmd.Println()
	cmd.Println(passage.Text)
	return nil
}
