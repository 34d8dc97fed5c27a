package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tasklinehq/taskline/internal/sync"
	"github.com/tasklinehq/taskline/internal/types"
)

var syncDryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a full bidirectional reconciliation pass",
	Long: `Reconcile every task and plan file against the remote team:
push local edits, pull remote edits and comments, resolve conflicts by
last-write-wins, and import remote issues that have no local file yet.

Safe to re-run at any time. A single record's failure is reported in the
summary and never aborts the pass.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()
		if !requireRemote(cfg) {
			return
		}
		engine := newEngine(cfg)
		result, err := engine.Run(context.Background(), sync.Options{Mode: sync.ModeFull, DryRun: syncDryRun})
		if err != nil {
			fatal(err)
		}
		printSummary(result, syncDryRun)
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report actions without writing files or calling mutations")
	rootCmd.AddCommand(syncCmd)
}

// printSummary renders the aggregate result of a pass.
func printSummary(result *types.SyncResult, dryRun bool) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	header := "=== Sync Summary ==="
	if dryRun {
		header = "=== Sync Summary (dry run) ==="
	}
	fmt.Printf("\n%s\n", cyan(header))
	fmt.Printf("  Pushed:   %d created, %d updated\n", result.PushedCreated, result.PushedUpdated)
	fmt.Printf("  Pulled:   %d imported, %d updated, %d comments\n",
		result.PulledCreated, result.PulledUpdated, result.PulledComments)
	fmt.Printf("  Skipped:  %s\n", gray(fmt.Sprintf("%d in sync", result.Skipped)))

	if len(result.Conflicts) > 0 {
		fmt.Printf("\n%s\n", yellow("Conflicts (last write wins):"))
		for _, conflict := range result.Conflicts {
			fmt.Printf("  %s %s: file=%q remote=%q → %s wins\n",
				yellow("⚠"), conflict.Path, conflict.FileValue, conflict.RemoteValue, conflict.Winner)
		}
	}
	if len(result.Errors) > 0 {
		fmt.Printf("\n%s\n", red("Errors:"))
		for _, msg := range result.Errors {
			fmt.Printf("  %s %s\n", red("✗"), msg)
		}
	}
	fmt.Println()
}
