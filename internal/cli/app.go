package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/controller"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/export"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/extract"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/llm"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/saturation"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/selector"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/source"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/store"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/verify"
)

// App bundles the wired application for the commands
type App struct {
	Config        *model.Config
	Registry      *controller.Registry
	Sessions      *store.DiskSessionStore
	Effectiveness *store.DiskEffectivenessStore
	Logger        *zap.Logger
}

// loadConfig merges viper-bound settings over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Storage.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.Storage.DataDir = filepath.Join(home, ".scout", "data")
	}

	// API key from the conventional env var unless configured explicitly
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

// newApp wires all collaborators from configuration: stores, ledger,
// selector, providers, engines, and the session registry
func newApp() (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
	}

	effectiveness := store.NewDiskEffectivenessStore(filepath.Join(cfg.Storage.DataDir, "effectiveness"))
	sessions := store.NewDiskSessionStore(filepath.Join(cfg.Storage.DataDir, "sessions"))

	ledger := selector.NewLedger(effectiveness,
		cfg.Selector.Alpha,
		cfg.Selector.DefaultScore,
		time.Duration(cfg.Selector.CacheTTLSeconds)*time.Second)

	registry := source.NewRegistry()
	if len(cfg.Sources.CrawlerSeeds) > 0 {
		registry.Register(source.NewCrawlerProvider(
			cfg.Sources.CrawlerSeeds,
			time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second,
			cfg.HTTP.UserAgent,
			cfg.HTTP.MaxBodyBytes,
			0.5))
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("configure LLM provider: %w", err)
	}

	deps := controller.Deps{
		Selector:    selector.NewSelector(ledger),
		Registry:    registry,
		Fanout:      source.NewFanout(registry, source.NewLimiter(cfg.Selector.DefaultRateLimit, cfg.Selector.DefaultRateBurst), logger),
		Engine:      verify.NewEngine(cfg.Verify),
		Thresholds:  saturation.ThresholdsFromConfig(cfg.Saturation),
		Extractor:   extract.NewExtractor(),
		Synthesizer: llm.NewSynthesizer(provider),
		Clarifier:   llm.NewClarifier(provider),
		Exporter:    export.NewFileExporter(),
		Sessions:    sessions,
		Config:      cfg.Research,
		Logger:      logger,
	}

	return &App{
		Config:        cfg,
		Registry:      controller.NewRegistry(deps),
		Sessions:      sessions,
		Effectiveness: effectiveness,
		Logger:        logger,
	}, nil
}
