package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizanlegal/mizan/internal/llm"
	"github.com/mizanlegal/mizan/internal/search"
)

func newSearchCmd() *cobra.Command {
	var (
		category string
		topK     int
		rerank   bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid search over the ingested corpus",
		Long: `Search runs the query through the lexical and semantic channels in
parallel, fuses the rankings, and prints the top results. With --rerank
the fused list is re-scored by the configured LLM first.`,
		Args: cobra.ExactArgs(1),
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

			opts := []search.RetrieverOption{
				search.WithWeights(search.Weights{
					Lexical:  app.cfg.Search.LexicalWeight,
					Semantic: app.cfg.Search.SemanticWeight,
				}),
				search.WithRRFK(app.cfg.Search.RRFConstant),
			}
			if rerank {
				client, err := llm.NewHTTPClient(llm.Config{
					BaseURL:     app.cfg.LLM.BaseURL,
					APIKey:      app.cfg.LLM.APIKey,
					Model:       app.cfg.LLM.Model,
					Temperature: app.cfg.LLM.Temperature,
					MaxTokens:   app.cfg.LLM.MaxTokens,
					Timeout:     app.cfg.LLM.Timeout,
				}, app.retryPolicy())
				if err != nil {
					return err
				}
				opts = append(opts, search.WithReranker(
					search.NewLLMReranker(client, app.cfg.Search.RerankTimeout)))
			}

			semantic := search.NewVectorSemanticIndex(embedder, app.vectors, app.db)
			retriever := search.NewRetriever(app.lexical, semantic, opts...)

			var filters map[string]string
			if category != "" {
				filters = map[string]string{"category": category}
			}
			if topK <= 0 {
				topK = app.cfg.Search.TopK
			}

			results, err := retriever.Retrieve(cmd.Context(), args[0], filters, topK)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "لم يتم العثور على مصادر مطابقة (no matching sources found)")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "--- [%d] score=%.4f chunk=%s", i+1, r.Score, r.ChunkID)
				if cat := r.Metadata["category"]; cat != "" {
					fmt.Fprintf(out, " category=%s", cat)
				}
				if name := r.Metadata["filename"]; name != "" {
					fmt.Fprintf(out, " file=%s", name)
				}
				fmt.Fprintf(out, "\n%s\n\n", r.Content)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "restrict results to one document category")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of results (default from config)")
	cmd.Flags().BoolVar(&rerank, "rerank", false, "re-score fused results with the configured LLM")
	return cmd
}
