package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mizanlegal/mizan/internal/ingest"
	"github.com/mizanlegal/mizan/internal/split"
)

func newIngestCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest legal documents into the engine",
		Long: `Ingest splits each file according to its category, embeds the chunks,
and persists everything to the document and vector stores. Categories:
law, jurisprudence, jurisprudence_full, jurisprudence_summary,
jurisprudence_conseil_etat, generic. Anything else falls back to
windowed splitting.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			embedder, err := app.newEmbedder()
			if err != nil {
				return err
			}
			defer embedder.Close()

			splitter := split.NewSplitter(split.WithWindow(
				app.cfg.Splitter.WindowSize,
				app.cfg.Splitter.WindowOverlap,
			))
			pipeline := ingest.NewPipeline(splitter, app.db, app.vectors, embedder, app.lexical, slog.Default())

			ctx := cmd.Context()
			for _, path := range args {
				doc, err := pipeline.IngestFile(ctx, path, split.Category(category))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks (%s) [%s]\n",
					doc.Filename, doc.TotalChunks, doc.Category, doc.ID)
			}

			return app.saveVectors()
		},
	}

	cmd.Flags().StringVar(&category, "category", string(split.CategoryGeneric), "document category")
	return cmd
}
