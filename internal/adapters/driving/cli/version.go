package cli

import "github.com/spf13/cobra"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pharmaguard version",
	Args:  cobra.NoArgs,
	// Version never touches storage or config.
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return nil },
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("pharmaguard version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
