package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arketype/internal/repair"
)

var repairFlags struct {
	graphDir     string
	defaultsFile string
	skipStubs    bool
	skipOrphans  bool
	skipClosure  bool
	apply        bool
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Complete stubs, connect orphans, and close one-way edges",
	Long: `Runs three structural passes over the graph. Stub completion fills
records scoring below the completeness threshold with namespace defaults,
never touching fields already present. Orphan repair gives relationship-less
archetypes one edge: MIRRORS to a nearby record when one sits inside the
distance band, otherwise INSTANTIATES to their strongest primordial. Closure
adds the missing half of every symmetric or inverse pair. Dry-run by
default; --apply writes changed records back.`,
	RunE: runRepair,
}

func init() {
	f := repairCmd.Flags()
	f.StringVar(&repairFlags.graphDir, "graph", defaultGraphDir, "Graph directory")
	f.StringVar(&repairFlags.defaultsFile, "defaults", "", "Namespace defaults YAML (default: embedded catalog)")
	f.BoolVar(&repairFlags.skipStubs, "skip-stubs", false, "Skip the stub completion pass")
	f.BoolVar(&repairFlags.skipOrphans, "skip-orphans", false, "Skip the orphan repair pass")
	f.BoolVar(&repairFlags.skipClosure, "skip-closure", false, "Skip the closure pass")
	f.BoolVar(&repairFlags.apply, "apply", false, "Write repaired records back to the graph files")
}

func runRepair(cmd *cobra.Command, _ []string) error {
	g, store, err := loadGraph(repairFlags.graphDir)
	if err != nil {
		return err
	}
	cat := repair.DefaultCatalog()
	if repairFlags.defaultsFile != "" {
		cat, err = repair.LoadCatalog(repairFlags.defaultsFile)
		if err != nil {
			return err
		}
	}

	params := repair.DefaultParams()
	params.SkipStubs = repairFlags.skipStubs
	params.SkipOrphans = repairFlags.skipOrphans
	params.SkipClosure = repairFlags.skipClosure

	changes := repair.Run(g, cat, params)

	out := cmd.OutOrStdout()
	fmt.Fprint(out, repair.FormatChangelog(changes, !repairFlags.apply))

	if !repairFlags.apply {
		return nil
	}
	changed := repair.ChangedIDs(changes)
	if len(changed) == 0 {
		fmt.Fprintln(out, "Nothing to write.")
		return nil
	}
	n, err := store.Save(g, changed)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Applied %d records across %d files in %s\n", len(changed), n, repairFlags.graphDir)
	return nil
}
