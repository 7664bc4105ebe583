package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openchamber-ai/openchamber/internal/command"
	"github.com/openchamber-ai/openchamber/pkg/types"
)

var (
	workingDir  string
	createScope string
)

var commandCmd = &cobra.Command{
	Use:   "command",
	Short: "Manage command definitions",
	Long: `Manage command definitions.

Commands are defined as markdown files in the command/ directory of the
config root (user scope), in .opencode/command/ under a project directory
(project scope), or under the "command" key of opencode.json. A project
document takes precedence over a user document of the same name.`,
}

var commandListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all commands",
	RunE:    runCommandList,
}

var commandSourcesCmd = &cobra.Command{
	Use:   "sources [name]",
	Short: "Show which stores and scopes define a command",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommandSources,
}

var commandScopeCmd = &cobra.Command{
	Use:   "scope [name]",
	Short: "Show which scope owns a command's document",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommandScope,
}

var commandCreateCmd = &cobra.Command{
	Use:   "create [name] [field=value]...",
	Short: "Create a new command",
	Long: `Create a new command document.

The template field becomes the document body; every other field goes into
the frontmatter. Use --scope project together with --working-dir to create
a project-level command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommandCreate,
}

var commandUpdateCmd = &cobra.Command{
	Use:   "update [name] [field=value]...",
	Short: "Update fields of a command",
	Long: `Update command fields in whichever store currently owns them.

An empty value (field=) removes the field from both stores.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCommandUpdate,
}

var commandDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a command at every scope",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommandDelete,
}

func init() {
	commandCmd.PersistentFlags().StringVar(&workingDir, "working-dir", "", "Project directory for project-scoped commands")
	commandCreateCmd.Flags().StringVar(&createScope, "scope", "user", "Scope for the new command (user|project)")

	commandCmd.AddCommand(commandListCmd)
	commandCmd.AddCommand(commandSourcesCmd)
	commandCmd.AddCommand(commandScopeCmd)
	commandCmd.AddCommand(commandCreateCmd)
	commandCmd.AddCommand(commandUpdateCmd)
	commandCmd.AddCommand(commandDeleteCmd)
}

func runCommandList(cmd *cobra.Command, args []string) error {
	svc := command.NewService(enginePaths())

	defs, err := svc.List(workingDir)
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
		if def.ProjectDoc {
			sources = append(sources, "project")
		}
		if def.UserDoc {
			sources = append(sources, "user")
		}
		if def.Section {
			sources = append(sources, "config")
		}
		fmt.Fprintf(w, "%s\t%s\t\n", def.Name, strings.Join(sources, ", "))
	}
	return w.Flush()
}

func runCommandSources(cmd *cobra.Command, args []string) error {
	svc := command.NewService(enginePaths())

	sources, err := svc.Sources(args[0], workingDir)
	if err != nil {
		return err
	}
	return printJSON(sources)
}

func runCommandScope(cmd *cobra.Command, args []string) error {
	svc := command.NewService(enginePaths())

	scope, path, ok := svc.ResolveScope(args[0], workingDir)
	if !ok {
		fmt.Printf("Command %s has no document at any scope\n", args[0])
		return nil
	}

	if jsonOut {
		return printJSON(map[string]any{"scope": scope, "path": path})
	}
	fmt.Printf("%s\t%s\n", scope, path)
	return nil
}

func runCommandCreate(cmd *cobra.Command, args []string) error {
	fields, err := parseFields(args[1:], false)
	if err != nil {
		return err
	}

	scope := types.Scope(createScope)
	if scope != types.ScopeUser && scope != types.ScopeProject {
		return fmt.Errorf("invalid scope %q (expected user or project)", createScope)
	}

	svc := command.NewService(enginePaths())
	if err := svc.Create(args[0], fields, workingDir, scope); err != nil {
		return err
	}

	fmt.Printf("Created command: %s\n", args[0])
	return nil
}

func runCommandUpdate(cmd *cobra.Command, args []string) error {
	updates, err := parseFields(args[1:], true)
	if err != nil {
		return err
	}

	svc := command.NewService(enginePaths())
	if err := svc.Update(args[0], updates, workingDir); err != nil {
		return err
	}

	fmt.Printf("Updated command: %s\n", args[0])
	return nil
}

func runCommandDelete(cmd *cobra.Command, args []string) error {
	svc := command.NewService(enginePaths())
	if err := svc.Delete(args[0], workingDir); err != nil {
		return err
	}

	fmt.Printf("Deleted command: %s\n", args[0])
	return nil
}
