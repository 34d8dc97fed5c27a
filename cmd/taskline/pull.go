package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tasklinehq/taskline/internal/sync"
)

var pullDryRun bool

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull remote changes into local files",
	Long: `Pull remote state, priority, and comment changes into the local
files, and import remote issues that have no local file yet. Nothing is
pushed.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()
		if !requireRemote(cfg) {
			return
		}
		engine := newEngine(cfg)
		result, err := engine.Run(context.Background(), sync.Options{Mode: sync.ModePull, DryRun: pullDryRun})
		if err != nil {
			fatal(err)
		}
		printSummary(result, pullDryRun)
	},
}

func init() {
	pullCmd.Flags().BoolVar(&pullDryRun, "dry-run", false, "report actions without writing files or calling mutations")
	rootCmd.AddCommand(pullCmd)
}
