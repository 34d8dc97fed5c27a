// taskline keeps a directory of markdown task files and a Linear team in
// sync, in both directions, with no database in between.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tasklinehq/taskline/internal/config"
	"github.com/tasklinehq/taskline/internal/linear"
	"github.com/tasklinehq/taskline/internal/sync"
	"github.com/tasklinehq/taskline/internal/taskfile"
)

var (
	cfgFile  string
	tasksDir string
	plansDir string
)

var rootCmd = &cobra.Command{
	Use:   "taskline",
	Short: "Bidirectional sync between markdown task files and Linear",
	Long: `taskline reconciles a directory of markdown task files (YAML
frontmatter + body) with a Linear team. Each run rebuilds truth from the
files and a live query; there is no intermediate database.

Task files are named {seq}-{status}-{priority}-{slug}.md; status and
priority changes rename the file. Remote comments accumulate in each
file's Work Log section.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&tasksDir, "dir", "", "task directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&plansDir, "plans-dir", "", "plans directory (overrides config)")
}

// resolveConfig builds the per-invocation configuration object that gets
// threaded into everything remote-touching.
func resolveConfig() *config.Config {
	cfg := config.Load(cfgFile)
	if tasksDir != "" {
		cfg.TasksDir = tasksDir
	}
	if plansDir != "" {
		cfg.PlansDir = plansDir
	}
	return cfg
}

// requireRemote reports whether remote operations can run. Missing
// credentials are a graceful skip with a zero exit, never an error: the
// local file workflow keeps working standalone.
func requireRemote(cfg *config.Config) bool {
	if cfg.HasCredentials() {
		return true
	}
	gray := color.New(color.FgHiBlack).SprintFunc()
	fmt.Printf("%s\n", gray(config.EnvAPIKey+" not set; skipping remote operations"))
	return false
}

func newEngine(cfg *config.Config) *sync.Engine {
	store := taskfile.NewStore(cfg.TasksDir, cfg.PlansDir)
	client := linear.NewClient(cfg.APIKey)
	return sync.New(store, client, cfg, os.Stdout)
}

// fatal prints the error and exits non-zero. Ambiguous team resolution
// additionally lists the available choices.
func fatal(err error) {
	var ambiguous *config.AmbiguousTeamError
	if errors.As(err, &ambiguous) {
		fmt.Fprintf(os.Stderr, "Error: multiple teams available, none selected:\n")
		for _, team := range ambiguous.Teams {
			fmt.Fprintf(os.Stderr, "  %-8s %s\n", team.Key, team.Name)
		}
		fmt.Fprintf(os.Stderr, "Set team in %s or %s\n", config.DefaultConfigFile, config.EnvTeam)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
