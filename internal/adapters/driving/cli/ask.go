package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [label-id] [question]",
	Short: "Ask a question about a drug label",
	Long: `Answers a question using only the label's own text. Every answer line
cites the passage ids it came from; use 'pharmaguard passage <id>' to
read a cited passage in full.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureEmbedding(); err != nil {
		return err
	}

	labelID, question := args[0], args[1]
	ctx := context.Background()

	result, err := qaService.Ask(ctx, labelID, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, result)
	}
	return outputAnswer(cmd, result)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, result domain.AnswerResult) error {
	for _, line := range result.Answer {
		if len(line.PassageIDs) > 0 {
			cmd.Printf("%s [%s]\n", line.Text, strings.Join(line.PassageIDs, ", "))
		} else {
			cmd.Println(line.Text)
		}
	}

	cmd.Println()
	cmd.Println(result.SafetyNote)

	if len(result.Evidence) > 0 {
		cmd.Println()
		cmd.Println("Evidence:")
		for _, ev := range result.Evidence {
			cmd.Printf("  %s  %s #%d (%.2f)\n", ev.PassageID, ev.Section, ev.Position, ev.Score)
			cmd.Printf("      %s\n", ev.Preview)
		}
	}
	return nil
}
