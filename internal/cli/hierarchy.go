package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vale981/klayout-converter/pkg/convert"
	"github.com/vale981/klayout-converter/pkg/hierarchy"
	"github.com/vale981/klayout-converter/pkg/layout"
)

// hierarchyCommand creates the hierarchy command, which exports the cell
// reference graph of a layout file.
func (c *CLI) hierarchyCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "hierarchy [file]",
		Short: "Export the cell-reference graph as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHierarchy(args[0], output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot or svg")

	return cmd
}

func (c *CLI) runHierarchy(input, output, format string) error {
	if format != "dot" && format != "svg" {
		return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", format)
	}

	reader, err := layout.Detect(input, convert.Readers()...)
	if err != nil {
		return formatError(err)
	}
	lay, err := reader.Read(input)
	if err != nil {
		return formatError(err)
	}

	graph := hierarchy.FromLayout(lay)
	c.Logger.Infof("Found %d cells, %d references", len(graph.Cells()), len(graph.Edges()))

	dot := hierarchy.ToDOT(graph)
	data := []byte(dot)
	if format == "svg" {
		if data, err = hierarchy.RenderSVG(dot); err != nil {
			return err
		}
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}

	printSuccess("Exported cell hierarchy")
	printFile(output)
	if roots := graph.Roots(); len(roots) > 0 {
		printDetail("Top cells: %s", strings.Join(roots, ", "))
	}
	return nil
}
