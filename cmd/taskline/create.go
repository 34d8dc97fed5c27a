package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var createParent string

var createCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create a remote issue from one task file",
	Long: `Push-create a single task file that has never been pushed.
With --parent, the new issue becomes a sub-issue of the named remote
issue.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()
		if !requireRemote(cfg) {
			return
		}
		engine := newEngine(cfg)
		record, err := engine.CreateFromFile(context.Background(), args[0], createParent)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Created %s from %s\n", record.RemoteID, record.Path)
	},
}

func init() {
	createCmd.Flags().StringVar(&createParent, "parent", "", "create as a sub-issue of this remote identifier")
	rootCmd.AddCommand(createCmd)
}
