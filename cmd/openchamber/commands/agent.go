package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openchamber-ai/openchamber/internal/agent"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage agent definitions",
	Long: `Manage agent definitions.

Agents are defined as markdown files in the agent/ directory of the config
root or under the "agent" key of opencode.json.`,
}

var agentListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all agents",
	RunE:    runAgentList,
}

var agentSourcesCmd = &cobra.Command{
	Use:   "sources [name]",
	Short: "Show which stores define an agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentSources,
}

var agentCreateCmd = &cobra.Command{
	Use:   "create [name] [field=value]...",
	Short: "Create a new agent",
	Long: `Create a new agent document.

The prompt field becomes the document body; every other field goes into the
frontmatter. Values are parsed as JSON when possible, otherwise as strings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAgentCreate,
}

var agentUpdateCmd = &cobra.Command{
	Use:   "update [name] [field=value]...",
	Short: "Update fields of an agent",
	Long: `Update agent fields in whichever store currently owns them.

An empty value (field=) removes the field from both stores.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAgentUpdate,
}

var agentDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete an agent, or disable a built-in one",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentDelete,
}

func init() {
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentSourcesCmd)
	agentCmd.AddCommand(agentCreateCmd)
	agentCmd.AddCommand(agentUpdateCmd)
	agentCmd.AddCommand(agentDeleteCmd)
}

func runAgentList(cmd *cobra.Command, args []string) error {
	svc := agent.NewService(enginePaths())

	defs, err := svc.List()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(defs)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCES\t")
	for _, def := range defs {
		var sources []string
		if def.Document {
			sources = append(sources, "document")
		}
		if def.Section {
			sources = append(sources, "config")
		}
		fmt.Fprintf(w, "%s\t%s\t\n", def.Name, strings.Join(sources, ", "))
	}
	return w.Flush()
}

func runAgentSources(cmd *cobra.Command, args []string) error {
	svc := agent.NewService(enginePaths())

	sources, err := svc.Sources(args[0])
	if err != nil {
		return err
	}
	return printJSON(sources)
}

func runAgentCreate(cmd *cobra.Command, args []string) error {
	fields, err := parseFields(args[1:], false)
	if err != nil {
		return err
	}

	svc := agent.NewService(enginePaths())
	if err := svc.Create(args[0], fields); err != nil {
		return err
	}

	fmt.Printf("Created agent: %s\n", args[0])
	return nil
}

func runAgentUpdate(cmd *cobra.Command, args []string) error {
	updates, err := parseFields(args[1:], true)
	if err != nil {
		return err
	}

	svc := agent.NewService(enginePaths())
	if err := svc.Update(args[0], updates); err != nil {
		return err
	}

	fmt.Printf("Updated agent: %s\n", args[0])
	return nil
}

func runAgentDelete(cmd *cobra.Command, args []string) error {
	svc := agent.NewService(enginePaths())
	if err := svc.Delete(args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted agent: %s\n", args[0])
	return nil
}
