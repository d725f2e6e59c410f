package main

import (
	"github.com/spf13/cobra"

	"researcher/internal/logging"
)

var flagSearchTopK int

var searchCmd = &cobra.Command{
	Use:   "search <question>",
	Short: "Show retrieved hits without writing a report",
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
		topK := flagSearchTopK
		if topK <= 0 {
			topK = a.Config.Retriever.TopK
		}
		res := a.Service.Search(cmd.Context(), args[0], topK)
		printWarnings(cmd.ErrOrStderr(), res.Warnings)
		printHits(cmd.OutOrStdout(), res.Hits)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&flagSearchTopK, "top-k", "k", 0, "number of local chunks to retrieve (default retriever.top_k)")
	rootCmd.AddCommand(searchCmd)
}
