// Package cmd provides the safetyctl commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
)

var (
	verbose  bool
	logLevel string

	log = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "safetyctl",
	Short: "Inspect and load dietary safety data",
	Long: `safetyctl evaluates products against dietary restrictions and loads
reference data into the database.

Examples:
  safetyctl assess --data reference.yaml --hold "Peanut Allergy=life_threatening" "Peanut Crunch Bar"
  safetyctl import ./reference.yaml
  safetyctl import s3://reference-data/2026/ingredients.yaml`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogger)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(importCmd)
}

func initLogger() {
	level := logLevel
	if verbose {
		level = "debug"
	}
	l, err := logger.New("development", level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		return
	}
	log = l
}
