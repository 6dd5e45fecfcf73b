package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aspireledger/aspire-bot/internal/bot"
	"github.com/aspireledger/aspire-bot/internal/health"
	"github.com/aspireledger/aspire-bot/internal/idempotency"
	"github.com/aspireledger/aspire-bot/internal/ledger"
	"github.com/aspireledger/aspire-bot/internal/ratelimit"
	"github.com/aspireledger/aspire-bot/internal/sheets"
	"github.com/aspireledger/aspire-bot/internal/state"
	"github.com/aspireledger/aspire-bot/pkg/config"
	"github.com/aspireledger/aspire-bot/pkg/graceful"
	"github.com/aspireledger/aspire-bot/pkg/logger"
	"github.com/aspireledger/aspire-bot/pkg/metrics"
	redispkg "github.com/aspireledger/aspire-bot/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	sentryEnabled := cfg.Sentry.Enabled && cfg.Sentry.DSN != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			slog.Error("failed to initialize sentry", slog.Any("error", err))
			sentryEnabled = false
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	log := logger.New(logger.Options{
		Level:         cfg.Log.Level,
		Format:        cfg.Log.Format,
		File:          cfg.Log.File,
		MaxSizeMB:     cfg.Log.MaxSizeMB,
		MaxBackups:    cfg.Log.MaxBackups,
		MaxAgeDays:    cfg.Log.MaxAgeDays,
		SentryEnabled: sentryEnabled,
	})
	slog.SetDefault(log)

	log.Info("starting ledger bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.Bool("redis", cfg.Redis.Enabled),
	)

	accessList := config.NewAccessList(cfg.Access)
	config.Watch(v, accessList, log)

	loc, err := time.LoadLocation(cfg.Ledger.Timezone)
	if err != nil {
		log.Warn("unknown timezone, falling back to UTC", slog.String("timezone", cfg.Ledger.Timezone))
		loc = time.UTC
	}

	var (
		redisClient  *goredis.Client
		stateStorage state.Storage
		draftStore   ledger.DraftStore
		idemStore    idempotency.Store
		limiter      ratelimit.Limiter
	)

	if cfg.Redis.Enabled {
		client, err := redispkg.New(ctx, redispkg.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if cerr := client.Close(); cerr != nil {
				log.Error("error closing redis client", slog.Any("error", cerr))
			}
		}()

		redisClient = client.Client
		stateStorage = state.NewRedisStorage(redisClient, log)
		draftStore = ledger.NewRedisStore(redisClient, log)
		idemStore = idempotency.NewRedisStore(redisClient, log)
		limiter = ratelimit.NewRedisLimiter(redisClient, log)
	} else {
		stateStorage = state.NewMemoryStorage()
		draftStore = ledger.NewMemoryStore()

		memIdemStore := idempotency.NewMemoryStore()
		idemStore = memIdemStore
		go idempotency.NewCleaner(memIdemStore, log, 10*time.Minute).Run(ctx)

		memLimiter := ratelimit.NewMemoryLimiter()
		limiter = memLimiter
		go ratelimit.NewCleaner(memLimiter, log, time.Hour, 10*time.Minute).Run(ctx)
	}

	if !cfg.RateLimit.Enabled {
		limiter = nil
	}

	state.RegisterTransitionRecorder(metrics.RecordStateTransition)

	fsm := state.NewMachine(stateStorage, log, redisClient)
	idempotencyManager := idempotency.NewManager(idemStore, log)

	appender, err := sheets.NewAppender(ctx, sheets.Config{
		SpreadsheetID:      cfg.Sheets.SpreadsheetID,
		SheetName:          cfg.Sheets.SheetName,
		ServiceAccountPath: cfg.Sheets.ServiceAccountPath,
		ClientID:           cfg.Sheets.ClientID,
		ClientSecret:       cfg.Sheets.ClientSecret,
		RefreshToken:       cfg.Sheets.RefreshToken,
	}, log)
	if err != nil {
		log.Error("failed to initialize sheets appender", slog.Any("error", err))
		os.Exit(1)
	}

	b, err := bot.New(*cfg, log, fsm, draftStore, appender, accessList, idempotencyManager, limiter, loc)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	if redisClient != nil {
		cleaner := state.NewCleaner(redisClient, stateStorage, log, time.Hour, 10*time.Minute)
		go cleaner.Run(ctx)
	}

	if counter, ok := stateStorage.(state.Counter); ok {
		go metrics.NewStateCollector(counter).Run(ctx)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	checker.AddCheck("sheets", appender)
	if redisClient != nil {
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	}

	srv := graceful.NewServer(log, &http.Server{
		Addr:    cfg.Server.Port,
		Handler: logger.Middleware(opsMux(checker)),
	}, cfg.Server.ShutdownTimeout)

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Error("ops server stopped with error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		b.Stop()
	}()

	log.Info("ledger bot started")
	b.Start()
	log.Info("ledger bot shut down")
}

func opsMux(checker *health.Checker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		for _, status := range results {
			if status != "OK" {
				w.WriteHeader(http.StatusServiceUnavailable)
				break
			}
		}

		_ = json.NewEncoder(w).Encode(results)
	})

	return mux
}
