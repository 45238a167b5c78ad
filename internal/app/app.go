// Package app wires adapters and services into the driving ports used by
// the CLI, HTTP API, MCP server and TUI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/papermentor/internal/adapters/driven/ai"
	"github.com/custodia-labs/papermentor/internal/adapters/driven/config/env"
	"github.com/custodia-labs/papermentor/internal/adapters/driven/config/file"
	"github.com/custodia-labs/papermentor/internal/adapters/driven/filestore/local"
	"github.com/custodia-labs/papermentor/internal/adapters/driven/storage"
	"github.com/custodia-labs/papermentor/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
	"github.com/custodia-labs/papermentor/internal/core/services"
	"github.com/custodia-labs/papermentor/internal/logger"
	"github.com/custodia-labs/papermentor/internal/normalisers/pdf"
	"github.com/custodia-labs/papermentor/internal/postprocessors"
)

// Options select where configuration lives and whether anything is persisted.
type Options struct {
	// ConfigDir holds config.toml and prompts/. Empty means ~/.papermentor.
	ConfigDir string

	// Ephemeral keeps vectors, sessions and uploaded PDFs in memory.
	Ephemeral bool
}

// App holds the wired services for one run.
type App struct {
	Settings *domain.AppSettings

	Ingest    *services.IngestService
	Chat      *services.DialogueService
	Retrieval *services.RetrievalService
	Sessions  *services.SessionService
	Config    *services.SettingsService

	providers *ai.Providers
	stores    *storage.Stores
}

// New reads the settings and builds every service.
// Provider clients are created on first use, so commands that never embed
// or generate work without credentials.
func New(ctx context.Context, opts Options) (*App, error) {
	configDir, err := resolveConfigDir(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Config directory: %s", configDir)

	base, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("%w: loading config: %w", domain.ErrInvalidConfig, err)
	}
	settingsService := services.NewSettingsService(env.New(base), ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	cfg := settings.Pipeline
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend := settings.Storage.Backend
	if opts.Ephemeral {
		backend = domain.VectorBackendMemory
	}

	stores, err := storage.Open(ctx, backend, cfg.DBDirectory, settings.Storage)
	if err != nil {
		return nil, err
	}

	files, err := openFileStore(cfg.UploadDirectory, opts.Ephemeral)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	pipeline, err := postprocessors.NewDefaultPipeline(cfg)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	promptStore, err := file.NewPromptStore(filepath.Join(configDir, "prompts"), services.DefaultPrompts())
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("%w: loading prompts: %w", domain.ErrInvalidConfig, err)
	}
	prompts := services.NewPrompts(promptStore)

	providers := ai.NewProviders(settings)

	index := services.NewVectorIndex(stores.Vectors, providers.Embedding(), cfg.BatchSize)
	retrieval := services.NewRetrievalService(index, cfg)
	summary := services.NewSummaryService(providers.LLM(), prompts, cfg)

	return &App{
		Settings:  settings,
		Ingest:    services.NewIngestService(files, pdf.New(), pipeline, index, summary, stores.Sessions),
		Chat:      services.NewDialogueService(retrieval, providers.LLM(), prompts, cfg),
		Retrieval: retrieval,
		Sessions:  services.NewSessionService(stores.Sessions, index, files),
		Config:    settingsService,
		providers: providers,
		stores:    stores,
	}, nil
}

func resolveConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: locating home directory: %w", domain.ErrInvalidConfig, err)
	}
	return filepath.Join(home, ".papermentor"), nil
}

func openFileStore(dir string, ephemeral bool) (driven.FileStore, error) {
	if ephemeral {
		return memory.NewFileStore(), nil
	}
	files, err := local.New(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: opening upload directory: %w", domain.ErrStorage, err)
	}
	return files, nil
}

// Warnings builds the provider clients and reports what is missing.
// A construction failure is reported as a warning too; the commands that
// need the provider will fail with the same error.
func (a *App) Warnings() []string {
	warnings, err := a.providers.Warnings()
	if err != nil {
		return append(warnings, err.Error())
	}
	return warnings
}

// Close releases the provider clients and the stores.
func (a *App) Close() error {
	a.providers.Close()
	if err := a.stores.Close(); err != nil {
		logger.Warn("closing stores: %v", err)
		return errors.Join(domain.ErrStorage, err)
	}
	return nil
}
