package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"productcatalog/internal/config"
	"productcatalog/internal/http/handlers"
	applog "productcatalog/internal/log"
	"productcatalog/internal/notify"
	"productcatalog/internal/observability"
	"productcatalog/internal/repos"
	"productcatalog/internal/services"
	"productcatalog/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := applog.NewOrFallback(cfg)
	if err != nil {
		log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
	}
	defer func() { _ = zl.Sync() }()
	applog.Init(zl)

	shutdownTracing, err := observability.SetupTracing(cfg.TraceStdout)
	if err != nil {
		zl.Fatal("tracing setup", zap.Error(err))
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		zl.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	if cfg.SeedDemo {
		seeded, err := repos.SeedIfEmpty(context.Background(), db)
		if err != nil {
			zl.Fatal("seed demo data", zap.Error(err))
		}
		zl.Info("demo data", zap.Bool("seeded", seeded))
	}

	var notifier services.Notifier = notify.NewLogNotifier(zl)
	if len(cfg.KafkaBrokers) > 0 {
		kn := notify.NewKafkaNotifier(notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic), zl)
		defer kn.Close()
		notifier = kn
		zl.Info("publishing notifications to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, notifier, zl)
	deps.Mount(app)
	app.Use(handlers.NotFound)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		zl.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	zl.Info("listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Error("listen", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		zl.Warn("tracing shutdown", zap.Error(err))
	}
}
