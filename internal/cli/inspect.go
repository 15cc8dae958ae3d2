package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vale981/klayout-converter/pkg/convert"
	"github.com/vale981/klayout-converter/pkg/hierarchy"
	"github.com/vale981/klayout-converter/pkg/layout"
)

// inspectCommand creates the inspect command, which shows what a layout
// file contains without converting it.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the layers and cells of a layout file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0])
		},
	}
}

func (c *CLI) runInspect(input string) error {
	reader, err := layout.Detect(input, convert.Readers()...)
	if err != nil {
		return formatError(err)
	}

	lay, err := reader.Read(input)
	if err != nil {
		return formatError(err)
	}

	fmt.Println(StyleTitle.Render(input))
	printKeyValue("Format", reader.Format())
	printKeyValue("Library", lay.Name)
	printKeyValue("Database unit", fmt.Sprintf("%g m (%g user units)", lay.DBUMeters, lay.DBUUser))
	fmt.Println()

	printLayerTable(lay)
	fmt.Println()
	printCellTable(lay)
	return nil
}

func printLayerTable(lay *layout.Layout) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	shapeCounts := make(map[layout.LayerKey]int)
	for _, cell := range lay.Cells() {
		for _, lyr := range lay.Layers() {
			shapeCounts[lyr.Key] += len(cell.ShapesOn(lyr.Key))
		}
	}

	rows := [][]string{}
	for _, lyr := range lay.Layers() {
		rows = append(rows, []string{
			lyr.Key.String(),
			lyr.Name,
			fmt.Sprintf("%d", shapeCounts[lyr.Key]),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Layer", "Name", "Shapes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	fmt.Println(t.Render())
}

func printCellTable(lay *layout.Layout) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	graph := hierarchy.FromLayout(lay)
	roots := make(map[string]bool)
	for _, r := range graph.Roots() {
		roots[r] = true
	}

	rows := [][]string{}
	for _, cell := range lay.Cells() {
		top := ""
		if roots[cell.Name] {
			top = iconSuccess
		}
		rows = append(rows, []string{
			cell.Name,
			fmt.Sprintf("%d", cell.ShapeCount()),
			fmt.Sprintf("%d", len(cell.Refs())),
			top,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Cell", "Shapes", "Refs", "Top").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	fmt.Println(t.Render())
}
