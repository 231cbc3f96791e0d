package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahvonen/notesmith/internal/engine"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search your notes",
	Long:  `Runs a hybrid keyword and semantic search over the index and prints the best matching notes.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 10, "maximum number of results")
	searchCmd.Flags().String("time-range", "", "restrict to recent notes: today, week, month, year")
	searchCmd.Flags().StringSlice("tag", nil, "require at least one of these tags")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	timeRange, _ := cmd.Flags().GetString("time-range")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	jsonOutput, _ := cmd.Flags().GetBool("json")

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

	results, err := eng.Search(context.Background(), engine.SearchRequest{
		Query:     args[0],
		TopK:      limit,
		TimeRange: timeRange,
		Tags:      tags,
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results found. Run `notesmith sync` if the index is stale.")
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	printSearchResults(results)
	return nil
}

func printSearchResults(results []engine.SearchResult) {
	fmt.Printf("Found %d result(s):\n\n", len(results))
	for i, r := range results {
		fmt.Printf("%d. %s  (%.4f)\n", i+1, r.Title, r.Score)
		fmt.Printf("   %s\n", r.Path)
		if len(r.Tags) > 0 {
			fmt.Printf("   tags: %v\n", r.Tags)
		}
		fmt.Printf("   updated %s\n", r.UpdatedAt.Format("2006-01-02"))
		fmt.Printf("   %s\n\n", truncate(r.Excerpt, 200))
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
