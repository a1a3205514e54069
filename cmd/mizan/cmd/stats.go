package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			stats, err := app.db.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "documents: %d\n", stats.Documents)
			fmt.Fprintf(out, "chunks:    %d\n", stats.Chunks)
			fmt.Fprintf(out, "vectors:   %d\n", app.vectors.Count())

			categories := make([]string, 0, len(stats.ChunksByCategory))
			for cat := range stats.ChunksByCategory {
				categories = append(categories, cat)
			}
			sort.Strings(categories)
			for _, cat := range categories {
				fmt.Fprintf(out, "  %-28s %d\n", cat, stats.ChunksByCategory[cat])
			}
			return nil
		},
	}
}
