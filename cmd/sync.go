package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahvonen/notesmith/internal/progress"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Index new and changed notes",
	Long:  `Scans the configured note directories and brings the index up to date. Unchanged notes are skipped; use --force to rebuild from scratch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		reporter := progress.NewReporter()
		started := false
		eng.SetProgressFunc(func(done, total int) {
			if !started {
				reporter.Start(total)
				started = true
			}
			reporter.Update(done, "")
		})

		res, err := eng.Sync(context.Background(), syncForce)
		if err != nil {
			return err
		}
		if started {
			reporter.Finish()
		}

		fmt.Printf("Scanned %d notes: %d added, %d updated, %d deleted (%d chunks, %.1fs)\n",
			res.Scanned, res.Added, res.Updated, res.Deleted, res.Chunks, res.Elapsed.Seconds())
		if len(res.Failures) > 0 {
			fmt.Printf("%d file(s) skipped:\n", len(res.Failures))
			for _, f := range res.Failures {
				fmt.Printf("  %s: %s\n", f.Path, f.Reason)
			}
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "rebuild the whole index")
	rootCmd.AddCommand(syncCmd)
}
