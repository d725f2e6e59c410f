package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"researcher/internal/logging"
	"researcher/internal/report"
)

var (
	flagTopK   int
	flagExport string
	flagRender bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Research a question and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(nil)
		if err != nil {
			return err
		}
		defer logging.Close()
		if _, err := a.Service.EnsureIndex(cmd.Context(), a.Config.DataDir); err != nil {
			return err
		}
		topK := flagTopK
		if topK <= 0 {
			topK = a.Config.Retriever.TopK
		}
		ans, err := a.Service.Ask(cmd.Context(), args[0], topK)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		errOut := cmd.ErrOrStderr()
		printWarnings(errOut, ans.Warnings)
		fmt.Fprintln(out, "Plan:")
		for i, step := range ans.Plan {
			fmt.Fprintf(out, "  %d. %s\n", i+1, step)
		}
		fmt.Fprintln(out)

		md := ans.Report
		if flagRender {
			rendered, err := glamour.Render(md, "auto")
			if err != nil {
				logging.Warn(errOut, "render failed: %v", err)
			} else {
				md = rendered
			}
		}
		fmt.Fprintln(out, md)

		if flagExport != "" {
			if err := report.Export(flagExport, ans.Record()); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			logging.Status(errOut, "Exported report to %s", flagExport)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().IntVarP(&flagTopK, "top-k", "k", 0, "number of local chunks to retrieve (default retriever.top_k)")
	askCmd.Flags().StringVar(&flagExport, "export", "", "write question, plan, hits and report to this JSON file")
	askCmd.Flags().BoolVar(&flagRender, "render", false, "render the Markdown report for the terminal")
	rootCmd.AddCommand(askCmd)
}
