package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tasklinehq/taskline/internal/sync"
)

var pushDryRun bool

var pushCmd = &cobra.Command{
	Use:   "push [file]",
	Short: "Push local changes to the remote (all records, or one file)",
	Long: `Push local status/priority/title changes outward. Unlinked
records are created remotely. Nothing is pulled and nothing is imported.

With a file argument, only that record is pushed.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()
		if !requireRemote(cfg) {
			return
		}
		opts := sync.Options{Mode: sync.ModePush, DryRun: pushDryRun}
		if len(args) == 1 {
			opts.File = args[0]
		}
		engine := newEngine(cfg)
		result, err := engine.Run(context.Background(), opts)
		if err != nil {
			fatal(err)
		}
		printSummary(result, pushDryRun)
	},
}

func init() {
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "report actions without writing files or calling mutations")
	rootCmd.AddCommand(pushCmd)
}
