package main

import (
	"github.com/spf13/cobra"

	"researcher/internal/logging"
)

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a file or directory to the existing index",
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
		sum, err := a.Service.AddPath(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printIngest(cmd.OutOrStdout(), sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
