package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arketype/internal/calibrate"
)

var recalibrateFlags struct {
	graphDir  string
	axesFile  string
	threshold float64
	maxShift  float64
	logFile   string
	apply     bool
}

var recalibrateCmd = &cobra.Command{
	Use:   "recalibrate",
	Short: "Repair polar pairs that sit too close on their declared axis",
	Long: `Plans a bounded symmetric repair for every POLAR_OPPOSITE pair whose
axis difference is below the threshold: both endpoints move apart by the
same amount, capped per side, with one side's unplaceable share spilling to
the other. Pairs that cannot reach the threshold within bounds are reported
and left untouched. Dry-run by default; --apply writes the moved
coordinates back. Every run writes a JSON log of the full plan.`,
	RunE: runRecalibrate,
}

func init() {
	f := recalibrateCmd.Flags()
	f.StringVar(&recalibrateFlags.graphDir, "graph", defaultGraphDir, "Graph directory")
	f.StringVar(&recalibrateFlags.axesFile, "axes", "", "Axis catalog YAML (default: embedded catalog)")
	f.Float64Var(&recalibrateFlags.threshold, "threshold", calibrate.DefaultParams().Threshold, "Minimum polar axis difference")
	f.Float64Var(&recalibrateFlags.maxShift, "max-shift", calibrate.DefaultParams().MaxShift, "Maximum shift per endpoint per run")
	f.StringVar(&recalibrateFlags.logFile, "log", "recalibration-log.json", "Run log path")
	f.BoolVar(&recalibrateFlags.apply, "apply", false, "Write repaired coordinates back to the graph files")
}

func runRecalibrate(cmd *cobra.Command, _ []string) error {
	reg, err := loadRegistry(recalibrateFlags.axesFile)
	if err != nil {
		return err
	}
	g, store, err := loadGraph(recalibrateFlags.graphDir)
	if err != nil {
		return err
	}

	params := calibrate.Params{
		Threshold: recalibrateFlags.threshold,
		MaxShift:  recalibrateFlags.maxShift,
	}
	plan := calibrate.BuildPlan(g, reg, params)
	plan.DryRun = !recalibrateFlags.apply

	out := cmd.OutOrStdout()
	fmt.Fprint(out, calibrate.FormatPlan(plan))

	if err := calibrate.WriteLog(recalibrateFlags.logFile, plan); err != nil {
		return err
	}
	fmt.Fprintf(out, "Run log: %s\n", recalibrateFlags.logFile)

	if plan.DryRun {
		return nil
	}
	changed := calibrate.Apply(g, plan)
	if len(changed) == 0 {
		fmt.Fprintln(out, "Nothing to write.")
		return nil
	}
	n, err := store.Save(g, changed)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Applied %d records across %d files in %s\n", len(changed), n, recalibrateFlags.graphDir)
	return nil
}
