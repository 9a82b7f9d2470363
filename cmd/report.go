package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/zjrosen/rdapgw/internal/presentation"
)

const defaultReportWidth = 100

var reportCmd = &cobra.Command{
	Use:   "report [gateway_analysis.json]",
	Short: "Summarize gateway_analysis.json as a styled report",
	Long: `Render the market split, confirmed gateways, candidates, the most used
RDAP URLs and data quality counts from gateway_analysis.json.

Use --raw to print the markdown source, for example to paste into an issue.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(cfg.Output.Dir, presentation.AnalysisFile)
		if len(args) > 0 {
			path = args[0]
		}
		raw, _ := cmd.Flags().GetBool("raw")
		width, _ := cmd.Flags().GetInt("width")
		if width <= 0 {
			width = terminalWidth()
		}
		return runReport(path, raw, width, cfg.UI.MarkdownStyle, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Bool("raw", false, "print plain markdown")
	reportCmd.Flags().Int("width", 0, "wrap width (default: terminal width)")
}

func terminalWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultReportWidth
}

func runReport(path string, raw bool, width int, style string, out io.Writer) error {
	analysis, err := presentation.ReadAnalysis(path)
	if err != nil {
		return fmt.Errorf("loading analysis: %w", err)
	}
	md := presentation.Markdown(analysis)
	if raw {
		_, err := io.WriteString(out, md)
		return err
	}
	rendered, err := presentation.RenderMarkdown(md, width, style)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}
