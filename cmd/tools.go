package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-upgates/internal/tools"
	"github.com/giantswarm/mcp-upgates/internal/tools/registry"
)

// newToolsCmd creates the command listing the tools the server registers.
func newToolsCmd() *cobra.Command {
	var (
		category     string
		readonlyOnly bool
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools exposed by mcp-upgates",
		Long: `Prints every tool with the Upgates endpoint it calls. Tools marked
"write" are disabled in readonly mode; tools marked "sensitive" are
anonymized when anonymization is enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.New()
			if err != nil {
				return err
			}
			return renderTools(cmd.OutOrStdout(), reg.Operations(), category, readonlyOnly)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list tools of this category (orders, products, customers, catalog, shop)")
	cmd.Flags().BoolVar(&readonlyOnly, "readonly-only", false, "Only list tools that stay available in readonly mode")

	return cmd
}

func renderTools(out io.Writer, ops []*tools.Operation, category string, readonlyOnly bool) error {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"TOOL", "TITLE", "CATEGORY", "METHOD", "ENDPOINT", "FLAGS"})

	shown := 0
	for _, op := range ops {
		if category != "" && op.Category != category {
			continue
		}
		if readonlyOnly && op.Mutating {
			continue
		}
		t.AppendRow(table.Row{
			op.Name,
			tools.ToolTitle(op.Name),
			op.Category,
			op.Method,
			endpoint(op),
			strings.Join(operationFlags(op), ","),
		})
		shown++
	}

	if shown == 0 {
		_, err := fmt.Fprintln(out, text.FgYellow.Sprint("No tools found"))
		return err
	}

	t.AppendFooter(table.Row{"", "", "", "", "Total", shown})
	t.Render()
	return nil
}

func endpoint(op *tools.Operation) string {
	switch {
	case op.CollectionPath != "" && op.ItemPath != "":
		return op.CollectionPath + " | " + op.ItemPath
	case op.ItemPath != "":
		return op.ItemPath
	default:
		return op.CollectionPath
	}
}

func operationFlags(op *tools.Operation) []string {
	var flags []string
	if op.Mutating {
		flags = append(flags, "write")
	}
	if op.Destructive {
		flags = append(flags, "destructive")
	}
	if op.Sensitive {
		flags = append(flags, "sensitive")
	}
	return flags
}
