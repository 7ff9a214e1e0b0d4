package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signstudio/signstudio/pkg/template"
)

// inspectCommand creates the inspect command for summarizing a payload file.
func (c *CLI) inspectCommand() *cobra.Command {
	var showBlocks bool

	cmd := &cobra.Command{
		Use:   "inspect [payload.json]",
		Short: "Print a template payload summary",
		Long: `Print a template payload summary.

The inspect command reads a load payload file, normalizes it, and prints the
template name, canvas dimensions, background, and block statistics without
opening the editor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0], showBlocks)
		},
	}

	cmd.Flags().BoolVar(&showBlocks, "blocks", false, "list every block with its geometry")

	return cmd
}

func (c *CLI) runInspect(path string, showBlocks bool) error {
	payload, err := template.ReadPayloadFile(path)
	if err != nil {
		return err
	}
	tpl := template.Normalize(payload)

	name := tpl.Name
	if name == "" {
		name = StyleDim.Render("(unnamed)")
	}
	printKeyValue("Template", name)
	if tpl.ID != "" {
		printKeyValue("ID", tpl.ID)
	}
	printKeyValue("Canvas", fmt.Sprintf("%dx%d", tpl.Width, tpl.Height))
	if tpl.BackgroundID != template.NoBackground {
		printKeyValue("Background", tpl.BackgroundID)
	}
	printStats(len(tpl.Blocks), len(payload.Media), len(payload.Fonts))

	if showBlocks {
		printNewline()
		for i, b := range tpl.Blocks {
			printDetail("%2d  %-12s %-20s %4d,%-4d %dx%d", i, b.Type, b.Name, b.X, b.Y, b.Width, b.Height)
		}
	}
	return nil
}
