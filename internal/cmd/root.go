// Package cmd implements the finbot command line.
package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "finbot",
	Short: "Financial-math chat bot",
	Long: `finbot answers financial-math questions sent over WhatsApp, Telegram or
Discord. A language model turns the question into a calculation plan; the
plan is executed with a fixed formula library and the worked solution is
sent back as an image.

Examples:
  finbot serve                          # run every enabled gateway
  finbot solve --plan plan.json         # execute a plan offline
  finbot formulas                       # list the formula catalogue`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "Path to the JSON config file")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
