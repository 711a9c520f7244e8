package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lawyer-bot/internal/about"
	"lawyer-bot/internal/analytics"
	"lawyer-bot/internal/config"
	"lawyer-bot/internal/flow"
	"lawyer-bot/internal/scheduler"
	"lawyer-bot/internal/session"
	"lawyer-bot/internal/store"
	"lawyer-bot/internal/submission"
	"lawyer-bot/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if cfg.AdminUserID == 0 {
		logger.Warn("ADMIN_USER is not set, submissions will only be persisted")
	}

	st, err := store.Open(string(cfg.StoreDriver), store.WithDSN(cfg.StoreDSN), store.WithLogger(logger.Named("store")))
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}()

	var fetcher about.Fetcher
	if cfg.DescriptionURL != "" {
		fetcher = about.NewHTTPFetcher(cfg.DescriptionURL, cfg.DescriptionTimeout)
	}
	aboutCache := about.NewCache(fetcher, logger.Named("about"))

	bot, err := telegram.New(cfg.TelegramBotToken, cfg.AdminUserID, logger.Named("telegram"))
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	sink := submission.NewSink(bot, st, cfg.AdminUserID, cfg.SubmitTimeout, logger.Named("sink"))
	engine := flow.NewEngine(session.NewStore(), sink, aboutCache, logger.Named("flow"))
	bot.SetHandler(engine)

	digest := analytics.NewDigest(st, bot, cfg.AdminUserID, logger.Named("digest"))
	bot.SetReporter(digest)

	sched := scheduler.New(cfg.ReportCron, logger.Named("scheduler"))
	sched.SetReportFunction(digest.Send)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot started", zap.String("store", string(cfg.StoreDriver)))
	bot.Start(ctx)

	sched.Stop()
	sink.Wait()
	logger.Info("bot stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.LogDev {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
