package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

var compareJSON bool

var compareCmd = &cobra.Command{
	Use:   "compare [drug-a] [drug-b]",
	Short: "Compare interaction language across two drug labels",
	Long: `Resolves both drugs to stored labels (fetching from openFDA when
needed) and surfaces what each label says about interactions, side by
side. The output reports label language only; it is not a clinical
interaction determination.

Both labels must be embedded first. When they are not, the command
reports the label ids to embed instead of failing.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output the comparison as JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := ensureEmbedding(); err != nil {
		return err
	}
	if compareService == nil {
		return errors.New("compare service not configured")
	}

	ctx := context.Background()

	result, err := compareService.Compare(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("compare failed: %w", err)
	}

	if compareJSON {
		return outputJSON(cmd, result)
	}
	return outputComparison(cmd, result)
}

func outputComparison(cmd *cobra.Command, result domain.ComparisonResult) error {
	cmd.Printf("Comparison: %s vs %s\n", result.DrugA.DrugName, result.DrugB.DrugName)

	switch result.Status {
	case domain.ComparisonNeedsEmbeddings:
		cmd.Printf("Status: %s\n", result.Status)
		cmd.Println(result.Message)
		if result.DrugA.LabelID != "" {
			cmd.Printf("  pharmaguard embed %s\n", result.DrugA.LabelID)
		}
		if result.DrugB.LabelID != "" {
			cmd.Printf("  pharmaguard embed %s\n", result.DrugB.LabelID)
		}
		return nil
	case domain.ComparisonError:
		cmd.Printf("Status: %s\n", result.Status)
		cmd.Println(result.Message)
		return nil
	}

	cmd.Println()
	for _, line := range result.Summary {
		cmd.Printf("  %s\n", line)
	}

	printSide(cmd, result.DrugA, result.EvidenceA)
	printSide(cmd, result.DrugB, result.EvidenceB)
	return nil
}

func printSide(cmd *cobra.Command, side domain.ComparisonSide, evidence []domain.EvidenceItem) {
	cmd.Println()
	cmd.Printf("%s (label %s):\n", side.DrugName, side.LabelID)
	if len(evidence) == 0 {
		cmd.Println("  No interaction language retrieved.")
		return
	}
	for _, ev := range evidence {
		cmd.Printf("  %s  %s #%d (%.2f)\n", ev.PassageID, ev.Section, ev.Position, ev.Score)
		cmd.Printf("      %s\n", ev.Preview)
	}
}
