// Package cmd implements the candidate-summary-api command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidate-summary-api",
		Short: "AI candidate summary service for the recruiting team.",
		Long: `candidate-summary-api generates AI candidate summaries and client
shortlist emails from RecruitCRM, AlphaRun, Quil, and Fireflies data, and
relays RecruitCRM stage webhooks to the automated summary worker.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (environment variables override file values)")
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
