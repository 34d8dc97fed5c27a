package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cancelNote string

var cancelCmd = &cobra.Command{
	Use:   "cancel <identifier>",
	Short: "Cancel a remote issue and its local record",
	Long: `Move the remote issue to the cancelled workflow state,
optionally leaving a comment, and apply the cancellation to the matching
local file (status transition and rename; the file is never deleted).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()
		if !requireRemote(cfg) {
			return
		}
		engine := newEngine(cfg)
		if err := engine.Cancel(context.Background(), args[0], cancelNote); err != nil {
			fatal(err)
		}
		fmt.Printf("Cancelled %s\n", args[0])
	},
}

func init() {
	cancelCmd.Flags().StringVar(&cancelNote, "note", "", "comment to leave on the cancelled issue")
	rootCmd.AddCommand(cancelCmd)
}
