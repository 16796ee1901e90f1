package pptx

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/slidetext/internal/config"
	"github.com/klytics/slidetext/internal/formats/pptx"
	"github.com/klytics/slidetext/internal/formats/xlsx"
	"github.com/klytics/slidetext/internal/fs"
	"github.com/klytics/slidetext/internal/logger"
	"github.com/klytics/slidetext/internal/output"
)

// pageHeight is the line count above which text output goes through the pager.
const pageHeight = 40

func newReadCommand() *cobra.Command {
	var (
		xlsxPath string
		noPager  bool
	)

	cmd := &cobra.Command{
		Use:   "read <file.pptx>",
		Short: "Extract slide text from a PowerPoint file",
		Long: `Reads a .pptx file and outputs the text of every slide, in slide order.
Text from SmartArt diagrams and charts embedded on a slide follows the slide's
own text, in the order the slide references them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]
			if !fs.IsPresentation(filePath) {
				return fmt.Errorf("expected a .pptx file, got %q: %w", filePath, output.ErrUsage)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			format, err := resolveFormat(cmd, cfg)
			if err != nil {
				return err
			}

			ext := pptx.NewExtractor(cfg.ExtractOptions(), logger.WithComponent("pptx"))
			pres, err := ext.ReadFile(cmd.Context(), filePath)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := xlsx.WritePresentation(pres, xlsxPath); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Wrote %s\n", xlsxPath)
			}

			if format != output.FormatText {
				return output.Render(os.Stdout, format, pres)
			}

			var buf bytes.Buffer
			if err := output.Render(&buf, output.FormatText, pres); err != nil {
				return err
			}
			if !noPager && output.ShouldPage(buf.String(), pageHeight) {
				return output.Page(buf.String())
			}
			return outputPPTXPretty(pres)
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also export the slide text to an .xlsx workbook")
	cmd.Flags().BoolVar(&noPager, "no-pager", false, "Never pipe text output through a pager")

	return cmd
}

// resolveFormat applies --json, then --format, then output.format from config.
func resolveFormat(cmd *cobra.Command, cfg *config.Config) (output.Format, error) {
	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		return output.FormatJSON, nil
	}
	name, _ := cmd.Flags().GetString("format")
	if name == "" {
		name = cfg.Output.Format
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return format, fmt.Errorf("%w: %w", err, output.ErrUsage)
	}
	return format, nil
}

func outputPPTXPretty(pres *pptx.Presentation) error {
	heading := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.FgHiBlack)

	for _, slide := range pres.Slides {
		heading.Printf("Slide %d\n", slide.Slide)
		if len(slide.Texts) == 0 {
			dim.Println("  (no text)")
		}
		for _, text := range slide.Texts {
			fmt.Printf("  %s\n", text)
		}
		fmt.Println()
	}

	st := pres.Stats()
	dim.Printf("--- %d slides, %d lines ---\n", st.Slides, st.Lines)
	return nil
}
