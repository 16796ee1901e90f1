// Package pptx provides CLI commands for working with .pptx files.
package pptx

import "github.com/spf13/cobra"

// NewCommand returns the pptx subcommand group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pptx",
		Short: "Extract text from PowerPoint presentations (.pptx)",
		Long:  "Commands for working with Microsoft PowerPoint .pptx files — extract slide text including SmartArt diagrams and charts.",
	}

	cmd.AddCommand(newReadCommand())

	return cmd
}
