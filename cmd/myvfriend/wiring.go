package main

import (
	"context"
	"fmt"

	"github.com/PabloGalante/myvfriend/internal/adapters/llm"
	"github.com/PabloGalante/myvfriend/internal/adapters/storage/file"
	firestorestore "github.com/PabloGalante/myvfriend/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/myvfriend/internal/adapters/storage/memory"
	"github.com/PabloGalante/myvfriend/internal/adapters/storage/postgres"
	redisstore "github.com/PabloGalante/myvfriend/internal/adapters/storage/redis"
	"github.com/PabloGalante/myvfriend/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/myvfriend/internal/config"
	"github.com/PabloGalante/myvfriend/internal/domain"
	"github.com/PabloGalante/myvfriend/internal/observability"
)

// closer is implemented by stores that hold a connection.
type closer interface {
	Close() error
}

// openStore builds the session store selected by cfg. The returned close
// func is never nil.
func openStore(ctx context.Context, cfg config.StorageConfig) (domain.SessionStore, func() error, error) {
	log := observability.Logger()

	var (
		store domain.SessionStore
		err   error
	)
	switch cfg.Backend {
	case "memory":
		log.Infow("using in-memory storage")
		store = memstore.NewSessionStore()
	case "file":
		log.Infow("using file storage", "dir", cfg.Dir)
		store, err = file.NewSessionStore(cfg.Dir)
	case "sqlite":
		log.Infow("using sqlite storage", "path", cfg.SQLitePath)
		store, err = sqlite.Open(ctx, cfg.SQLitePath)
	case "redis":
		log.Infow("using redis storage", "addr", cfg.RedisAddr, "db", cfg.RedisDB, "ttl", cfg.RedisTTL)
		store, err = redisstore.NewSessionStore(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		})
	case "postgres":
		log.Infow("using postgres storage")
		store, err = postgres.Open(ctx, cfg.PostgresDSN)
	case "firestore":
		log.Infow("using firestore storage", "project", cfg.GCPProject)
		store, err = firestorestore.NewStore(ctx, cfg.GCPProject)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("initializing %s store: %w", cfg.Backend, err)
	}

	closeFn := func() error { return nil }
	if c, ok := store.(closer); ok {
		closeFn = c.Close
	}
	return store, closeFn, nil
}

// newLLM builds the generation client selected by cfg.
func newLLM(ctx context.Context, cfg config.LLMConfig) (domain.LLMClient, error) {
	log := observability.Logger()

	switch cfg.Backend {
	case "mock":
		log.Infow("using mock LLM client")
		return llm.NewMockLLM(), nil
	case "gemini":
		log.Infow("using Gemini API client", "model", cfg.Model)
		return llm.NewGeminiClient(ctx, llm.GeminiOptions{APIKey: cfg.APIKey, Model: cfg.Model})
	case "vertex":
		log.Infow("using Vertex AI client", "project", cfg.Project, "location", cfg.Location, "model", cfg.Model)
		return llm.NewGeminiClient(ctx, llm.GeminiOptions{
			Project:  cfg.Project,
			Location: cfg.Location,
			Model:    cfg.Model,
		})
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.Backend)
	}
}
