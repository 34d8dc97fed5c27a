package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tasklinehq/taskline/internal/sync"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show each record's sync relationship without changing anything",
	Long: `Classify every record as in-sync, push-pending, pull-pending,
conflict-pending, or unlinked, using the same comparison a sync pass
would. Read-only: no file is written and no remote mutation is issued.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()
		if !requireRemote(cfg) {
			return
		}
		engine := newEngine(cfg)
		rows, err := engine.Report(context.Background())
		if err != nil {
			fatal(err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Sync Status ==="))
		counts := map[sync.RecordState]int{}
		for _, row := range rows {
			counts[row.State]++

			glyph, paint := "●", green
			switch row.State {
			case sync.StatePushPending:
				glyph, paint = "↑", yellow
			case sync.StatePullPending:
				glyph, paint = "↓", yellow
			case sync.StateConflictPending:
				glyph, paint = "⚠", red
			case sync.StateUnlinked:
				glyph, paint = "○", gray
			case sync.StateError:
				glyph, paint = "✗", red
			}

			remote := row.RemoteID
			if remote == "" {
				remote = "-"
			}
			fmt.Printf("  %s %-45s %-10s %s", paint(glyph), filepath.Base(row.Path), remote, paint(string(row.State)))
			if row.Detail != "" {
				fmt.Printf(" %s", gray("("+row.Detail+")"))
			}
			fmt.Println()
		}

		fmt.Printf("\n  %d records: %s in sync, %s to push, %s to pull, %s conflicts, %s unlinked\n\n",
			len(rows),
			green(fmt.Sprintf("%d", counts[sync.StateInSync])),
			yellow(fmt.Sprintf("%d", counts[sync.StatePushPending])),
			yellow(fmt.Sprintf("%d", counts[sync.StatePullPending])),
			red(fmt.Sprintf("%d", counts[sync.StateConflictPending])),
			gray(fmt.Sprintf("%d", counts[sync.StateUnlinked])))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
