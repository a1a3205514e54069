package cmd

import (
	"fmt"

	"github.com/mizanlegal/mizan/internal/config"
	"github.com/mizanlegal/mizan/internal/embed"
	"github.com/mizanlegal/mizan/internal/retry"
	"github.com/mizanlegal/mizan/internal/store"
)

// app bundles the stores every command operates on. The vector store is
// loaded from disk on open; commands that modify it call saveVectors
// before exiting.
type app struct {
	cfg     *config.Config
	db      *store.DB
	lexical *store.LexicalIndex
	vectors *store.HNSWStore
}

// openApp loads configuration, opens the document store, and restores the
// vector index from its snapshot.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := store.OpenDB(cfg.Paths.Database)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Paths.Database, err)
	}

	vectors, err := store.NewHNSWStore(store.DefaultVectorStoreConfig(cfg.Embedding.Dimensions))
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := vectors.Load(cfg.Paths.Vectors); err != nil {
		db.Close()
		return nil, fmt.Errorf("load vector index %s: %w", cfg.Paths.Vectors, err)
	}

	return &app{
		cfg:     cfg,
		db:      db,
		lexical: store.NewLexicalIndex(db),
		vectors: vectors,
	}, nil
}

func (a *app) close() {
	a.lexical.Close()
	a.vectors.Close()
	a.db.Close()
}

func (a *app) saveVectors() error {
	if err := a.vectors.Save(a.cfg.Paths.Vectors); err != nil {
		return fmt.Errorf("save vector index %s: %w", a.cfg.Paths.Vectors, err)
	}
	return nil
}

// retryPolicy maps the retry section of the config onto a policy shared
// by all outbound clients. Each client installs its own retryable
// predicate.
func (a *app) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  a.cfg.Retry.MaxAttempts,
		InitialDelay: a.cfg.Retry.InitialDelay,
		MaxDelay:     a.cfg.Retry.MaxDelay,
		Multiplier:   a.cfg.Retry.Multiplier,
	}
}

// newEmbedder builds the cached Gemini embedder from config.
func (a *app) newEmbedder() (embed.Embedder, error) {
	gemini, err := embed.NewGeminiEmbedder(embed.GeminiConfig{
		BaseURL:    a.cfg.Embedding.BaseURL,
		APIKey:     a.cfg.Embedding.APIKey,
		Model:      a.cfg.Embedding.Model,
		Dimensions: a.cfg.Embedding.Dimensions,
		Timeout:    a.cfg.Embedding.Timeout,
	}, a.retryPolicy())
	if err != nil {
		return nil, err
	}
	return embed.NewCachedEmbedder(gemini, a.cfg.Embedding.CacheSize)
}
