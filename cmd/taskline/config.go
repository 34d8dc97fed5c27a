package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tasklinehq/taskline/internal/config"
	"github.com/tasklinehq/taskline/internal/linear"
	"github.com/tasklinehq/taskline/internal/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n", cyan("=== Configuration ==="))

		if cfg.HasCredentials() {
			fmt.Printf("  Credential: %s\n", green("set ("+config.EnvAPIKey+")"))
		} else {
			fmt.Printf("  Credential: %s\n", gray("not set, remote operations will be skipped"))
		}

		team := cfg.Team
		source := string(cfg.TeamSource)
		if team == "" {
			if cfg.HasCredentials() {
				if resolved, err := cfg.ResolveTeam(context.Background(), linear.NewClient(cfg.APIKey)); err == nil {
					team = resolved.Key
					source = string(cfg.TeamSource)
				} else {
					team = "unresolved: " + err.Error()
				}
			} else {
				team = "auto-detect"
			}
		}
		fmt.Printf("  Team:       %s %s\n", team, gray("("+source+")"))
		if cfg.ProjectID != "" {
			fmt.Printf("  Project:    %s\n", cfg.ProjectID)
		}
		fmt.Printf("  Tasks dir:  %s\n", cfg.TasksDir)
		fmt.Printf("  Plans dir:  %s\n", cfg.PlansDir)

		fmt.Printf("\n  Status map:\n")
		for _, status := range types.AllStatuses() {
			fmt.Printf("    %-12s ↔ %s\n", status, cfg.StatusMap[status])
		}
		fmt.Printf("  Priority map:\n")
		for _, priority := range types.AllPriorities() {
			fmt.Printf("    %-12s ↔ %d\n", priority, cfg.PriorityMap[priority])
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
