package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <identifier>",
	Short: "Import one remote issue as a local task file",
	Long: `Import a single remote issue by its human identifier (e.g.
ENG-42), assigning the next local sequence id. Fails if the issue is
already linked to a local file.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()
		if !requireRemote(cfg) {
			return
		}
		engine := newEngine(cfg)
		record, err := engine.ImportOne(context.Background(), args[0])
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Imported %s as %s\n", args[0], record.Path)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
