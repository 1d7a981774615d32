package main

import (
	"github.com/spf13/cobra"

	"github.com/vadiminshakov/dexboard/internal/setup"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with an interactive wizard",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configPath
		if path == "" {
			path = "config.yaml"
		}
		return setup.RunTUI(path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
