// Package commands provides the CLI commands for OpenChamber.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openchamber-ai/openchamber/internal/config"
	"github.com/openchamber-ai/openchamber/internal/logging"
)

// Version information set at build time
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	configDir string
	logLevel  string
	jsonOut   bool
)

var rootCmd = &cobra.Command{
	Use:   "openchamber",
	Short: "OpenChamber - opencode configuration manager",
	Long: `OpenChamber manages opencode agent and command definitions across their
two storage forms: markdown documents with YAML frontmatter, and the
consolidated opencode.json file.

Run 'openchamber agent' or 'openchamber command' to manage an entity kind.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Config{
			Level:  logging.ParseLevel(logLevel),
			Pretty: true,
		})
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config root (defaults to the opencode config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "WARN", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print results as JSON")

	rootCmd.SetVersionTemplate(fmt.Sprintf("openchamber %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(commandCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// enginePaths returns the config paths honoring the --config-dir flag.
func enginePaths() *config.Paths {
	return config.NewPaths(configDir)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
