package main

import (
	"github.com/spf13/cobra"

	"researcher/internal/logging"
)

var flagRebuild bool

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Build the index from the data directory or the given paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(nil)
		if err != nil {
			return err
		}
		defer logging.Close()

		out := cmd.OutOrStdout()
		switch {
		case len(args) > 0:
			sum, err := a.Service.Rebuild(cmd.Context(), args...)
			if err != nil {
				return err
			}
			printIngest(out, sum)
		case flagRebuild:
			sum, err := a.Service.Rebuild(cmd.Context(), a.Config.DataDir)
			if err != nil {
				return err
			}
			printIngest(out, sum)
		default:
			sum, err := a.Service.EnsureIndex(cmd.Context(), a.Config.DataDir)
			if err != nil {
				return err
			}
			printIngest(out, sum)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&flagRebuild, "rebuild", false, "rebuild even when a saved index exists")
	rootCmd.AddCommand(indexCmd)
}
