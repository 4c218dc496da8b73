package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	rootCmd *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "paysafe-cli",
		Short: "Drive a test card payment through the Payments Hub lifecycle",
		Long: `paysafe-cli runs a single card payment against the Payments Hub test API:
health check, method discovery, handle creation, payment submission and
completion polling, with optional cancellation and refund sub-flows.

The outcome can be validated against an expected-result fixture.`,
		RunE:          runRun, // Default action is run
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(rootCmd.Version)
	},
}
