// Package app wires settings, adapters and services into the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/cartographer/internal/adapters/driven/ai"
	"github.com/custodia-labs/cartographer/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cartographer/internal/adapters/driven/language/lingua"
	"github.com/custodia-labs/cartographer/internal/adapters/driven/metrics"
	"github.com/custodia-labs/cartographer/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/cartographer/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cartographer/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cartographer/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/cli"
	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/core/services"
	"github.com/custodia-labs/cartographer/internal/logger"
	"github.com/custodia-labs/cartographer/internal/normalisers"
)

// Bootstrap loads settings from configPath (or the default locations) and
// builds the services the CLI runs against.
func Bootstrap(_ context.Context, configPath string) (*cli.Services, error) {
	settings, err := file.LoadSettings(configPath)
	if err != nil {
		return nil, err
	}
	return Build(settings.Normalise())
}

// Build creates every adapter and service for settings. The returned
// Close releases the LLM client and the history database.
func Build(settings domain.Settings) (*cli.Services, error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	tokenizer, err := tiktoken.New(tiktoken.DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}
	estimator := services.NewEstimator(tokenizer)

	scanner := services.NewScanService(settings, normalisers.NewDefaultRegistry(), lingua.New(), estimator)

	fileCache := filesystem.NewFileCache(settings.CacheDir, settings.CacheTTL)
	analysis := services.NewAnalysisService(scanner)
	analysis.SetFileCache(fileCache)

	prompts, err := file.NewPromptStore(settings.InstructionsDir, services.DefaultPromptSections())
	if err != nil {
		return nil, fmt.Errorf("init prompt store: %w", err)
	}
	builder := services.NewPromptBuilder(prompts, file.NewTemplateStore(settings.TemplatesDir), estimator)

	llm, err := ai.CreateLLMClient(settings)
	if err != nil {
		return nil, err
	}
	if llm != nil {
		closers = append(closers, llm.Close)
	} else {
		logger.Debug("No API key configured; only debug extraction is available")
	}

	history := openHistory(settings.DataDir, &closers)

	recorder := metrics.New()
	extraction := services.NewExtractionService(
		settings,
		builder,
		llm,
		filesystem.NewArtifactStore(settings.DebugDir),
		filesystem.NewArtifactStore(settings.OutputDir),
	)
	extraction.SetHistoryStore(history)
	extraction.SetMetrics(recorder)

	return &cli.Services{
		Settings:   settings,
		Scan:       scanner,
		Analysis:   analysis,
		Extraction: extraction,
		Cache:      services.NewCacheService(scanner, fileCache),
		History:    services.NewHistoryService(history),
		Metrics:    recorder.Handler(),
		Close:      closeAll,
	}, nil
}

// openHistory opens the SQLite ledger, falling back to an in-memory one
// when the data directory is unusable.
func openHistory(dataDir string, closers *[]func() error) driven.HistoryStore {
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Warn("History disabled for this run: %v", err)
		return memory.NewHistoryStore()
	}
	*closers = append(*closers, store.Close)
	return store.HistoryStore()
}

// InitConfig writes a starter config file to path and copies the built-in
// template examples into a templates directory beside it. It returns the
// paths written.
func InitConfig(path string, force bool) ([]string, error) {
	if err := file.WriteSettings(path, domain.DefaultSettings(), force); err != nil {
		return nil, err
	}

	templatesDir := filepath.Join(filepath.Dir(path), domain.DefaultTemplatesDir)
	written, err := file.NewTemplateStore(templatesDir).WriteDefaults()
	if err != nil {
		return []string{path}, err
	}
	return append([]string{path}, written...), nil
}
