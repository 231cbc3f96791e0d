package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ahvonen/notesmith/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure notesmith with an interactive wizard",
	Long:  `Runs an interactive wizard that asks where your notes live and which model provider to use, then writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
