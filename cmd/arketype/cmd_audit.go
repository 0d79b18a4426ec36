package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"arketype/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Human-judgment rounds over sampled relationship claims",
	Long: `An audit round freezes a sample of relationship claims with their
computed geometry, then collects one human judgment per claim across as
many sittings as needed. Judgments are saved after every answer, so a
session can be quit or killed at any prompt without losing work. The round
passes when the agreement rate over counted judgments reaches the
threshold.`,
}

var auditNewFlags struct {
	graphDir  string
	roundDir  string
	n         int
	seed      int64
	threshold float64
	force     bool
}

var auditNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Sample a fresh case set for judging",
	RunE:  runAuditNew,
}

var auditRunFlags struct {
	roundDir string
}

var auditRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Judge pending cases, resuming where the last session stopped",
	RunE:  runAuditRun,
}

var auditStatusFlags struct {
	roundDir string
}

var auditStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print round progress and concordance without judging",
	RunE:  runAuditStatus,
}

var auditResetFlags struct {
	roundDir string
	yes      bool
}

var auditResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all judgments for the round, keeping the case set",
	RunE:  runAuditReset,
}

func init() {
	f := auditNewCmd.Flags()
	f.StringVar(&auditNewFlags.graphDir, "graph", defaultGraphDir, "Graph directory")
	f.StringVar(&auditNewFlags.roundDir, "round", "audit-round", "Round directory")
	f.IntVar(&auditNewFlags.n, "n", 20, "Number of cases to sample")
	f.Int64Var(&auditNewFlags.seed, "seed", 1, "Sampling seed")
	f.Float64Var(&auditNewFlags.threshold, "threshold", audit.DefaultThreshold, "Concordance pass threshold")
	f.BoolVar(&auditNewFlags.force, "force", false, "Replace an existing round, discarding its judgments")

	auditRunCmd.Flags().StringVar(&auditRunFlags.roundDir, "round", "audit-round", "Round directory")
	auditStatusCmd.Flags().StringVar(&auditStatusFlags.roundDir, "round", "audit-round", "Round directory")

	f = auditResetCmd.Flags()
	f.StringVar(&auditResetFlags.roundDir, "round", "audit-round", "Round directory")
	f.BoolVar(&auditResetFlags.yes, "yes", false, "Skip the confirmation prompt")

	auditCmd.AddCommand(auditNewCmd)
	auditCmd.AddCommand(auditRunCmd)
	auditCmd.AddCommand(auditStatusCmd)
	auditCmd.AddCommand(auditResetCmd)
}

func runAuditNew(cmd *cobra.Command, _ []string) error {
	if audit.HasCases(auditNewFlags.roundDir) && !auditNewFlags.force {
		return fmt.Errorf("round already exists at %s (use --force to replace it)", auditNewFlags.roundDir)
	}
	g, _, err := loadGraph(auditNewFlags.graphDir)
	if err != nil {
		return err
	}

	cs := audit.NewCaseSet(g, auditNewFlags.graphDir, auditNewFlags.n, auditNewFlags.seed, auditNewFlags.threshold)
	if len(cs.Cases) == 0 {
		return fmt.Errorf("graph at %s has no sampleable relationships", auditNewFlags.graphDir)
	}
	round := audit.NewRound(auditNewFlags.roundDir, cs)
	if err := round.SaveCases(); err != nil {
		return err
	}
	// A replaced round must not inherit the old round's judgments.
	if err := round.Reset(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sampled %d cases into %s (round %s)\nRun `arketype audit run --round %s` to start judging.\n",
		len(cs.Cases), auditNewFlags.roundDir, cs.RoundID, auditNewFlags.roundDir)
	return nil
}

func runAuditRun(cmd *cobra.Command, _ []string) error {
	round, err := audit.LoadRound(auditRunFlags.roundDir)
	if err != nil {
		return err
	}
	return audit.NewSession(round, cmd.InOrStdin(), cmd.OutOrStdout()).Run()
}

func runAuditStatus(cmd *cobra.Command, _ []string) error {
	round, err := audit.LoadRound(auditStatusFlags.roundDir)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), audit.FormatStatus(round))
	return nil
}

func runAuditReset(cmd *cobra.Command, _ []string) error {
	round, err := audit.LoadRound(auditResetFlags.roundDir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	judged, total := round.Progress()
	if judged == 0 {
		fmt.Fprintln(out, "Round has no judgments to discard.")
		return nil
	}
	if !auditResetFlags.yes {
		fmt.Fprintf(out, "About to discard %d of %d judgments for round %s.\nType yes to confirm: ",
			judged, total, round.Cases.RoundID)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if strings.TrimSpace(line) != "yes" {
			fmt.Fprintln(out, "Reset aborted.")
			return nil
		}
	}
	if err := round.Reset(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Round %s reset: %d judgments discarded.\n", round.Cases.RoundID, judged)
	return nil
}
