package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/jeongsedam/policy-cli/internal/planner"
	"github.com/jeongsedam/policy-cli/internal/store"
	"github.com/jeongsedam/policy-cli/pkg/claude"
	"github.com/jeongsedam/policy-cli/pkg/openai"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "policies.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initMigratedStore opens the store and applies migrations. Callers should
// defer st.Close().
func initMigratedStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initOpenAI() openai.Client {
	return openai.NewClient(cfg.OpenAI.Key,
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithChatModel(cfg.OpenAI.ChatModel),
		openai.WithImageModel(cfg.OpenAI.ImageModel),
		openai.WithImagesPerMinute(cfg.OpenAI.ImagesPerMinute),
	)
}

func initChatClient() (planner.ChatClient, error) {
	if err := cfg.Validate("generate"); err != nil {
		return nil, err
	}
	switch cfg.Generate.Provider {
	case "openai":
		return &planner.OpenAIChat{
			Client:    initOpenAI(),
			Model:     cfg.OpenAI.ChatModel,
			MaxTokens: cfg.Generate.MaxTokens,
		}, nil
	case "anthropic":
		return &planner.ClaudeChat{
			Client:    claude.NewClient(cfg.Anthropic.Key, claude.WithModel(cfg.Anthropic.Model)),
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Generate.MaxTokens,
		}, nil
	default:
		return nil, eris.Errorf("unknown generate provider: %s", cfg.Generate.Provider)
	}
}

func initImageGenerator() (planner.ImageGenerator, error) {
	if err := cfg.Validate("image"); err != nil {
		return nil, err
	}
	return &planner.DallE{Client: initOpenAI(), Model: cfg.OpenAI.ImageModel}, nil
}

// initPlanner wires the store, chat backend and (optionally) the image
// backend into a Planner. withImages controls whether the OpenAI key is
// required even when analysis runs on Anthropic.
func initPlanner(ctx context.Context, withImages bool) (*planner.Planner, store.Store, error) {
	st, err := initMigratedStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	chat, err := initChatClient()
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	var images planner.ImageGenerator
	if withImages {
		images, err = initImageGenerator()
		if err != nil {
			_ = st.Close()
			return nil, nil, err
		}
	}

	return planner.New(chat, images, st, cfg.Generate), st, nil
}
