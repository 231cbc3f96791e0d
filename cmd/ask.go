package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your notes",
	Long:  `Retrieves the notes most relevant to the question and asks the configured model to answer from them, with citations.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topK, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log := newLogger()
		eng, cleanup, err := buildEngine(cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		answer, err := eng.Answer(context.Background(), args[0], topK)
		if err != nil {
			return err
		}

		fmt.Println(answer.Content)
		if len(answer.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range answer.Sources {
				fmt.Printf("  [%d] %s (%s)\n", src.Index, src.Title, src.Path)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().Int("limit", 5, "number of notes to retrieve")
	rootCmd.AddCommand(askCmd)
}
