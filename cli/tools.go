package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/catalog"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/evaluator"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/registry"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/tools"
)

// NewToolsCmd creates the "tools" subcommand, which prints the tools the
// server would register without starting it.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List registered tools",
		RunE:  runTools,
	}
	cmd.Flags().String("definitions", "", "Path to tool definitions YAML (default: built-in set)")
	return cmd
}

func runTools(cmd *cobra.Command, _ []string) error {
	definitionsPath, _ := cmd.Flags().GetString("definitions")

	toolset, err := tools.NewToolset(catalog.NewMemoryStore(), evaluator.NewLennardJones())
	if err != nil {
		return fmt.Errorf("creating toolset: %w", err)
	}

	reg := registry.New()
	if err := registerDefinitions(reg, toolset, definitionsPath); err != nil {
		return err
	}

	printRegisteredTools(cmd, reg)
	return nil
}

// printRegisteredTools writes the tool listing to stderr, keeping stdout
// free for machine-readable output.
func printRegisteredTools(cmd *cobra.Command, reg *registry.Registry) {
	out := cmd.ErrOrStderr()

	fmt.Fprintln(out, "\n=== MOF Tools Server ===")
	fmt.Fprintf(out, "Registered %d tools:\n", reg.Len())
	for _, meta := range reg.GetAll() {
		fmt.Fprintf(out, "  - %s (%s)\n", meta.Name, meta.Category)
		fmt.Fprintf(out, "    %s\n", meta.Description)
	}

	fmt.Fprintln(out, "\nTools by category:")
	counts := reg.ListCategories()
	for _, category := range registry.Categories() {
		if counts[category] == 0 {
			continue
		}
		fmt.Fprintf(out, "  %s: %d tool(s)\n", category, counts[category])
	}
	fmt.Fprintln(out, "")
}
