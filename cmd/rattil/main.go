// Command rattil is the main entry point for the Rattil recitation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/mkhalidi/rattil/internal/advice"
	"github.com/mkhalidi/rattil/internal/align"
	"github.com/mkhalidi/rattil/internal/config"
	"github.com/mkhalidi/rattil/internal/health"
	"github.com/mkhalidi/rattil/internal/observe"
	"github.com/mkhalidi/rattil/internal/quran"
	"github.com/mkhalidi/rattil/internal/resilience"
	"github.com/mkhalidi/rattil/internal/server"
	"github.com/mkhalidi/rattil/internal/session"
	"github.com/mkhalidi/rattil/internal/store"
)

// version is stamped by the build; "dev" for local builds.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "rattil: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "rattil: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("rattil starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "rattil",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Store ─────────────────────────────────────────────────────────────────
	st, closeStore, err := buildStore(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Store.Driver, "err", err)
		return 1
	}
	defer closeStore()

	// ── Reference text provider ───────────────────────────────────────────────
	var quranOpts []quran.Option
	if cfg.Quran.BaseURL != "" {
		quranOpts = append(quranOpts, quran.WithBaseURL(cfg.Quran.BaseURL))
	}
	if cfg.Quran.Edition != "" {
		quranOpts = append(quranOpts, quran.WithEdition(cfg.Quran.Edition))
	}
	provider := quran.NewClient(quranOpts...)

	// ── Alignment engine ──────────────────────────────────────────────────────
	var scorerOpts []align.ScorerOption
	if cfg.Align.Strategy != "" {
		scorerOpts = append(scorerOpts, align.WithStrategy(align.Strategy(cfg.Align.Strategy)))
	}
	scorer := align.NewScorer(scorerOpts...)

	alignerOpts := []align.AlignerOption{align.WithScorer(scorer)}
	if cfg.Align.MatchThreshold > 0 {
		alignerOpts = append(alignerOpts, align.WithMatchThreshold(cfg.Align.MatchThreshold))
	}
	aligner := align.NewAligner(alignerOpts...)
	comparator := align.NewComparator(align.WithComparatorScorer(scorer))

	// ── Advisor chain ─────────────────────────────────────────────────────────
	advisor, err := buildAdvisor(cfg.Advisor)
	if err != nil {
		slog.Error("failed to build advisor", "err", err)
		return 1
	}

	// ── Session manager ───────────────────────────────────────────────────────
	manager := session.NewManager(session.ManagerConfig{
		Provider:   provider,
		Aligner:    aligner,
		Comparator: comparator,
		Advisor:    advisor,
		Store:      st,
		Metrics:    metrics,
	})

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := server.New(server.Config{
		ListenAddr: cfg.Server.ListenAddr,
		Manager:    manager,
		Store:      st,
		Health:     health.New(health.PingChecker("store", st)),
		Metrics:    metrics,
	})

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// buildStore opens the configured persistence backend and returns it together
// with its close function.
func buildStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func(), error) {
	switch cfg.Driver {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("store opened", "driver", "postgres")
		return pg, pool.Close, nil

	case config.StoreSQLite:
		db, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("store opened", "driver", "sqlite", "path", cfg.SQLitePath)
		return db, func() { _ = db.Close() }, nil

	default:
		slog.Info("store opened", "driver", "memory")
		return store.NewMemory(), func() {}, nil
	}
}

// buildAdvisor assembles the advisory chain: the configured LLM as primary
// when one is set, with the static advisor as the terminal fallback.
func buildAdvisor(cfg config.AdvisorConfig) (advice.Advisor, error) {
	static := advice.NewStatic(cfg.MaxSuggestions)
	if cfg.Provider == "" {
		return static, nil
	}

	var backendOpts []anyllmlib.Option
	if cfg.APIKey != "" {
		backendOpts = append(backendOpts, anyllmlib.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		backendOpts = append(backendOpts, anyllmlib.WithBaseURL(cfg.BaseURL))
	}

	var llmOpts []advice.LLMOption
	if cfg.MaxSuggestions > 0 {
		llmOpts = append(llmOpts, advice.WithMaxSuggestions(cfg.MaxSuggestions))
	}
	llm, err := advice.NewLLM(cfg.Provider, cfg.Model, backendOpts, llmOpts...)
	if err != nil {
		return nil, err
	}

	resilient := advice.NewResilient("llm", llm, resilience.BreakerConfig{Name: "advisor-llm"})
	resilient.AddFallback("static", static)
	slog.Info("advisor chain built", "primary", cfg.Provider, "model", cfg.Model)
	return resilient, nil
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
