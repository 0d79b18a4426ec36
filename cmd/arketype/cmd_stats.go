package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"arketype/internal/display"
	"arketype/internal/format"
	"arketype/internal/graph"
	"arketype/internal/repair"
)

var statsFlags struct {
	graphDir string
	axesFile string
	output   string
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a census of the graph",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.StringVar(&statsFlags.graphDir, "graph", defaultGraphDir, "Graph directory")
	f.StringVar(&statsFlags.axesFile, "axes", "", "Axis catalog YAML (default: embedded catalog)")
	f.StringVar(&statsFlags.output, "format", "table", "Output format: table or markdown")
}

func runStats(cmd *cobra.Command, _ []string) error {
	reg, err := loadRegistry(statsFlags.axesFile)
	if err != nil {
		return err
	}
	g, _, err := loadGraph(statsFlags.graphDir)
	if err != nil {
		return err
	}

	mode := format.ASCII
	if statsFlags.output == "markdown" {
		mode = format.Markdown
	}
	census := graph.TakeCensus(g)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "=== Graph Statistics ===\n")
	fmt.Fprintf(out, "Archetypes: %d (%d primordial)   Edges: %d   Orphans: %d\n\n",
		census.Archetypes, census.Primordials, census.Edges, census.Orphans)

	nsTable := format.NewTable(mode)
	nsTable.Header("Namespace", "Archetypes")
	nsTable.RightAlign(2)
	namespaces := make([]string, 0, len(census.Namespaces))
	for ns := range census.Namespaces {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	for _, ns := range namespaces {
		nsTable.Row(ns, census.Namespaces[ns])
	}
	nsTable.Footer("Total", census.Archetypes)
	fmt.Fprintln(out, nsTable.String())
	fmt.Fprintln(out)

	relTable := format.NewTable(mode)
	relTable.Header("Relationship", "Edges")
	relTable.RightAlign(2)
	for _, t := range graph.AllRelationTypes {
		if n := census.RelationTypes[string(t)]; n > 0 {
			relTable.Row(display.RelationType(string(t)), n)
		}
	}
	for _, code := range unknownCodes(census.RelationTypes) {
		relTable.Row(code+" (unknown)", census.RelationTypes[code])
	}
	relTable.Footer("Total", census.Edges)
	fmt.Fprintln(out, relTable.String())
	fmt.Fprintln(out)

	axisTable := format.NewTable(mode)
	axisTable.Header("Axis", "Records")
	axisTable.RightAlign(2)
	for _, name := range reg.Names() {
		axisTable.Row(display.Axis(name), census.AxisCoverage[name])
	}
	extra := make([]string, 0)
	for axis := range census.AxisCoverage {
		if !reg.Has(axis) {
			extra = append(extra, axis)
		}
	}
	sort.Strings(extra)
	for _, axis := range extra {
		axisTable.Row(axis+" (not in catalog)", census.AxisCoverage[axis])
	}
	fmt.Fprintln(out, axisTable.String())
	fmt.Fprintln(out)

	params := repair.DefaultParams()
	stubs := 0
	var sum float64
	var buckets [5]int // 0-19, 20-39, 40-59, 60-79, 80-100
	for _, a := range g.All() {
		res := repair.CheckCompleteness(a, params.StubThreshold)
		if res.Stub {
			stubs++
		}
		sum += res.Score
		b := int(res.Score) / 20
		if b > 4 {
			b = 4
		}
		buckets[b]++
	}
	mean := 0.0
	if census.Archetypes > 0 {
		mean = sum / float64(census.Archetypes)
	}

	compTable := format.NewTable(mode)
	compTable.Header("Completeness", "Archetypes")
	compTable.RightAlign(2)
	labels := []string{"0-19", "20-39", "40-59", "60-79", "80-100"}
	for i, label := range labels {
		compTable.Row(label, buckets[i])
	}
	fmt.Fprintln(out, compTable.String())
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Completeness: mean score %.1f, %d stubs below %.0f\n", mean, stubs, params.StubThreshold)
	return nil
}

func unknownCodes(counts map[string]int) []string {
	var out []string
	for code := range counts {
		if !graph.RelationType(code).Known() {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}
