package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arketype/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "arketype",
	Short: "Consistency tooling for the archetype knowledge graph",
	Long: "Arketype maintains a knowledge graph of archetypes positioned in an\n" +
		"8-axis coordinate space. It validates that typed relationships honor\n" +
		"their geometric contracts, repairs violations with bounded coordinate\n" +
		"shifts, closes one-way edges, and runs human audit rounds over sampled\n" +
		"relationship claims.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(recalibrateCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
