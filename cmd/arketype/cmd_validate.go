package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"arketype/internal/format"
	"arketype/internal/validate"
)

var validateFlags struct {
	graphDir string
	axesFile string
	advisory bool
	output   string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check relationship semantics against the coordinate geometry",
	Long: `Loads the full graph and verifies every typed relationship: polar
opposites must be far enough apart on their declared axis, symmetric and
directed edges must be closed on both ends, INSTANTIATES must point at a
primordial, and echo fidelity must be in range. Read-only; violations are
reported, never auto-fixed.`,
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateFlags.graphDir, "graph", defaultGraphDir, "Graph directory")
	f.StringVar(&validateFlags.axesFile, "axes", "", "Axis catalog YAML (default: embedded catalog)")
	f.BoolVar(&validateFlags.advisory, "advisory", false, "Include advisory findings such as echo drift")
	f.StringVar(&validateFlags.output, "format", "table", "Output format: table, markdown, or json")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	reg, err := loadRegistry(validateFlags.axesFile)
	if err != nil {
		return err
	}
	g, _, err := loadGraph(validateFlags.graphDir)
	if err != nil {
		return err
	}

	params := validate.DefaultParams()
	params.Advisory = validateFlags.advisory
	rep := validate.Run(g, reg, params)

	out := cmd.OutOrStdout()
	switch validateFlags.output {
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "markdown":
		fmt.Fprint(out, validate.FormatReport(rep, format.Markdown))
	default:
		fmt.Fprint(out, validate.FormatReport(rep, format.ASCII))
	}
	return nil
}
