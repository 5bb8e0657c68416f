package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jask/catswitch/internal/apps"
	"github.com/jask/catswitch/internal/cache"
	"github.com/jask/catswitch/internal/classifier"
	"github.com/jask/catswitch/internal/config"
	"github.com/jask/catswitch/internal/database"
	"github.com/jask/catswitch/internal/database/repository"
	"github.com/jask/catswitch/internal/llm"
	"github.com/jask/catswitch/internal/logging"
	"github.com/jask/catswitch/internal/prefs"
	"github.com/jask/catswitch/internal/resilience"
	"github.com/jask/catswitch/internal/secrets"
	"github.com/jask/catswitch/internal/service"
	"github.com/jask/catswitch/internal/session"
)

// app is the wired object graph shared by the subcommands.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	db      *sql.DB
	secrets *secrets.Store

	registry    *prometheus.Registry
	cache       *cache.Cache
	classifier  *classifier.Classifier
	catalog     *service.CatalogService
	maintenance *service.MaintenanceService
}

type appOptions struct {
	// quietLog drops log output unless log.file is set, so it does not
	// draw over a full-screen UI.
	quietLog bool
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var log *zap.Logger
	if opts.quietLog && cfg.Log.File == "" {
		log = zap.NewNop()
	} else if log, err = logging.New(cfg.Log); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	store, err := secrets.NewStore("")
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, secrets: store, registry: prometheus.NewRegistry()}
	cacheStore, db, err := openCacheStore(cfg.Cache)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.cache = cache.Open(ctx, cacheStore, log.Named("cache"))

	breakerLog := log.Named("breaker")
	a.classifier = classifier.New(a.cache, classifier.Options{
		Provider: newProvider(cfg.LLM, resolveAPIKey(cfg, store)),
		Breaker: resilience.New(resilience.Settings{
			Failures: cfg.LLM.BreakerFailures,
			Cooldown: cfg.LLM.BreakerCooldown,
			OnStateChange: func(from, to resilience.State) {
				breakerLog.Info("remote breaker state changed", zap.Stringer("from", from), zap.Stringer("to", to))
			},
		}),
		Metrics: classifier.NewMetrics(a.registry),
		Logger:  log,
	})
	a.catalog = service.NewCatalogService(apps.ManifestSource{Path: cfg.Apps.Manifest}, a.classifier, log)
	a.maintenance = &service.MaintenanceService{Cache: a.cache, DB: db}
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.log.Sync()
}

// openCacheStore returns the blob store selected by cache.backend.
func openCacheStore(cfg config.CacheConfig) (cache.Store, *sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir cache dir: %w", err)
	}
	switch cfg.Backend {
	case "file":
		fs, err := prefs.NewFileStore(filepath.Dir(cfg.Path), cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	default:
		db, err := database.OpenMigrated(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache db: %w", err)
		}
		return repository.NewSettingsRepo(db).Blob(cfg.Key), db, nil
	}
}

func newProvider(cfg config.LLMConfig, apiKey string) llm.Provider {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "none", "":
		return llm.Disabled{}
	}
	if apiKey == "" {
		return llm.Disabled{}
	}
	return llm.NewOpenAIProvider(llm.OpenAIConfig{
		APIKey:            apiKey,
		Model:             cfg.Model,
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
}

// resolveAPIKey prefers the env var, then the secret store, then the
// config file.
func resolveAPIKey(cfg config.Config, store *secrets.Store) string {
	provider := strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	env := strings.TrimSpace(cfg.LLM.APIKeyEnv)
	if env == "" {
		env = "OPENAI_API_KEY"
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	if store != nil && provider != "" {
		if k, err := store.Get(provider); err == nil {
			return k
		}
	}
	return strings.TrimSpace(cfg.LLM.APIKey)
}

// newActivator runs activation.command, or only logs when it is empty.
func newActivator(cfg config.ActivationConfig, log *zap.Logger) (session.Activator, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return apps.LogActivator{Log: log}, nil
	}
	return apps.NewExecActivator(cfg.Command, log)
}

// watchProvider swaps the remote provider when the config file changes.
func (a *app) watchProvider(ctx context.Context) {
	err := config.Watch(ctx, func(cfg config.Config) {
		a.classifier.SetProvider(newProvider(cfg.LLM, resolveAPIKey(cfg, a.secrets)))
	}, a.log.Named("config"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		a.log.Warn("config watch disabled", zap.Error(err))
	}
}
