package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"DrawdownSentinel/internal/board"
	"DrawdownSentinel/internal/cache"
	"DrawdownSentinel/internal/collector"
	"DrawdownSentinel/internal/common"
	"DrawdownSentinel/internal/config"
	"DrawdownSentinel/internal/notifier"
	"DrawdownSentinel/internal/recorder"
	"DrawdownSentinel/internal/scheduler"
	"DrawdownSentinel/internal/server"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfgPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger := common.NewLogger(cfg.Log.Level)
	logger.Info().Strs("instruments", cfg.Instruments).Msg("DrawdownSentinel starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := newFetcher(cfg)
	logger.Info().Str("provider", fetcher.Name()).Str("reference_high", cfg.ReferenceHigh).Msg("data source ready")

	// the intraday fallback may spend one provider timeout per interval
	fetchTimeout := cfg.DataSource.Timeout * time.Duration(len(cfg.IntradayIntervals)+1)
	opts := []cache.Option{cache.WithLogger(logger), cache.WithFetchTimeout(fetchTimeout)}
	if cfg.Cache.Redis.Addr != "" {
		store, err := cache.NewRedisStore(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Cache.Redis.Addr).Msg("redis unavailable, using in-process cache")
		} else {
			defer store.Close()
			opts = append(opts, cache.WithStore(store))
			logger.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("redis cache connected")
		}
	}
	quoteCache := cache.New(cfg.Cache.TTLs, opts...)

	col := collector.NewCollector(fetcher, quoteCache, cfg.HighKind(), cfg.IntradayIntervals, logger)
	svc := board.NewService(col, cfg.Instruments, cfg.Thresholds, logger)

	var rec recorder.Recorder
	if cfg.HistorySize > 0 {
		rec = recorder.NewMemoryRecorder(cfg.HistorySize)
	} else {
		rec = recorder.NewNoopRecorder()
	}

	var tn *notifier.TelegramNotifier
	var alerts notifier.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		alerts = tn
	} else {
		logger.Info().Msg("telegram not configured, alerts disabled")
	}

	sched := scheduler.NewScheduler(ctx, svc, alerts, rec, cfg.Telegram.AlertStatuses, logger)
	if err := sched.Register(cfg.RefreshInterval); err != nil {
		logger.Fatal().Err(err).Msg("register refresh task")
	}

	// first board before serving
	sched.RunNow()
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info().Msg("telegram polling started")
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := server.NewEngine(&server.Handler{
		Board:           svc,
		Recorder:        rec,
		Cache:           quoteCache,
		RefreshInterval: cfg.RefreshInterval,
		Logger:          logger,
	})
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	logger.Info().Msg("DrawdownSentinel stopped")
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case config.ProviderVsTrader:
		return collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	case config.ProviderMock:
		prices := make(map[string]float64, len(cfg.Instruments))
		for i, sym := range cfg.Instruments {
			prices[sym] = 100 + float64(i)*50
		}
		return collector.NewDemoFetcher(prices)
	default:
		return collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.RateLimit, cfg.DataSource.Timeout)
	}
}
