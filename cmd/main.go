package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cpop-ledger/db/migrations"
	"cpop-ledger/internal/adapter/auth"
	"cpop-ledger/internal/adapter/cache"
	httpadapter "cpop-ledger/internal/adapter/http"
	"cpop-ledger/internal/adapter/memory"
	"cpop-ledger/internal/adapter/postgres"
	"cpop-ledger/internal/adapter/transfer"
	"cpop-ledger/internal/adapter/usecase"
	"cpop-ledger/internal/config"
	"cpop-ledger/internal/core/port"
	"cpop-ledger/internal/db"
	"cpop-ledger/internal/metrics"
	"cpop-ledger/internal/telemetry"
)

// main is the entry point of the campaign ledger service. It loads
// configuration, optionally runs database migrations, builds the storage,
// transfer and use case layers, then starts the HTTP server. On receiving a
// termination signal it gracefully shuts down the server.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}

	// Initialise structured logger based on configuration.
	logger := slog.New(cfg.Log.Handler(os.Stdout))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Otel, cfg.Env)
	if err != nil {
		logger.Error("tracing setup error", slog.Any("error", err))
		return
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracing shutdown error", slog.Any("error", err))
		}
	}()

	policy, err := usecase.ParseDistributionPolicy(cfg.Program.DistributionPolicy)
	if err != nil {
		logger.Error("invalid program config", slog.Any("error", err))
		return
	}

	var (
		repo   port.CampaignRepository
		ledger *transfer.LedgerTransfer
	)
	switch cfg.Storage {
	case config.StorageMemory:
		repo = memory.NewCampaignRepository()
		logger.Warn("using in-memory storage, state is lost on exit")
	default:
		// Optionally run migrations if configured. We use the Psql sub‑config.
		if cfg.Psql.RunMigrations {
			from, err := db.Migrate(cfg.Psql.Addr.String())
			if err != nil {
				logger.Error("migration error", slog.Any("error", err))
				return
			}
			logger.Info("migrations applied successfully",
				slog.Uint64("from_version", uint64(from)),
				slog.Uint64("version", migrations.Version),
			)
		}

		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			logger.Error("database connection error", slog.Any("error", err))
			return
		}
		defer pool.Close()
		repo = postgres.NewCampaignRepository(pool)
	}

	if cfg.Cache.Size > 0 {
		cached, err := cache.NewCampaignRepository(repo, cfg.Cache.Size, cfg.Cache.TTL)
		if err != nil {
			logger.Error("cache setup error", slog.Any("error", err))
			return
		}
		defer cached.Close()
		repo = cached
	}

	var tokens port.TokenTransfer
	if cfg.Transfer.Endpoint != "" {
		tokens = transfer.NewHTTPTransfer(cfg.Transfer.Endpoint, cfg.Transfer.Timeout, cfg.Transfer.RetryPolicy(), logger)
	} else {
		ledger = transfer.NewLedgerTransfer()
		tokens = ledger
		logger.Warn("no transfer endpoint configured, using the in-process token ledger")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := usecase.NewCampaignUseCase(repo, tokens, auth.NewEd25519Verifier(), usecase.Config{
		Program:   cfg.Program.ID,
		Policy:    policy,
		Allowlist: cfg.Program.Allowlist,
		Logger:    logger,
		Metrics:   metrics.NewLedger(reg),
	})

	if cfg.Demo.Enabled {
		if err = seedDemo(ctx, cfg, svc, ledger, logger); err != nil {
			logger.Error("demo seed error", slog.Any("error", err))
			return
		}
	}

	handler := httpadapter.NewHandler(svc, logger, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.Int("port", int(cfg.HTTP.Port)),
			slog.String("storage", cfg.Storage),
			slog.String("program", cfg.Program.ID.String()),
			slog.String("distribution_policy", policy.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		logger.Error("server error", slog.Any("error", err))
		return
	case <-ctx.Done():
		exitCode = 0
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancelShutdown()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		exitCode = 1
	} else {
		logger.Info("server gracefully stopped")
	}
}

// seedDemo creates demo campaigns. The organizer key comes from config or
// is generated and logged so the demo campaigns can be driven afterwards.
func seedDemo(ctx context.Context, cfg config.Config, svc port.CampaignUseCase, ledger *transfer.LedgerTransfer, logger *slog.Logger) error {
	var (
		organizer auth.Keypair
		err       error
	)
	if cfg.Demo.OrganizerKey != "" {
		organizer, err = auth.KeypairFromSeed(base58.Decode(cfg.Demo.OrganizerKey))
	} else {
		organizer, err = auth.NewKeypair()
		if err == nil {
			logger.Info("generated demo organizer key", slog.String("seed", base58.Encode(organizer.Seed())))
		}
	}
	if err != nil {
		return fmt.Errorf("demo organizer key: %w", err)
	}

	var funder db.Funder
	if ledger != nil {
		funder = ledger
	}
	if err = db.Seed(ctx, svc, organizer, cfg.Demo.Mint, funder); err != nil {
		return err
	}
	logger.Info("demo data seeded", slog.String("organizer", organizer.Identity().String()))
	return nil
}
