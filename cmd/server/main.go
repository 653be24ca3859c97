package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/Aurora209/inventory-system/internal/config"
	"github.com/Aurora209/inventory-system/internal/domain/bom"
	"github.com/Aurora209/inventory-system/internal/domain/catalog"
	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/orders"
	"github.com/Aurora209/inventory-system/internal/domain/production"
	"github.com/Aurora209/inventory-system/internal/domain/products"
	"github.com/Aurora209/inventory-system/internal/infra/db"
	httpx "github.com/Aurora209/inventory-system/internal/infra/http"
	"github.com/Aurora209/inventory-system/internal/infra/logger"
	"github.com/Aurora209/inventory-system/internal/infra/metrics"
	"github.com/Aurora209/inventory-system/internal/infra/notify"
	"github.com/Aurora209/inventory-system/migrations"
)

func configPath() string {
	def := "config/example.yaml"
	if v := os.Getenv("APP_CONFIG"); v != "" {
		def = v
	}
	path := flag.String("config", def, "path to YAML config")
	flag.Parse()
	return *path
}

func stockNotifier(cfg config.Config, log *slog.Logger) inventory.Notifier {
	if !cfg.TelegramEnabled() {
		log.Info("telegram alerts disabled")
		return inventory.NopNotifier{}
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed, alerts disabled", "err", err)
		return inventory.NopNotifier{}
	}
	log.Info("telegram alerts enabled", "bot", api.Self.UserName, "chat_id", cfg.Telegram.AdminChatID)
	return notify.NewTelegram(api, cfg.Telegram.AdminChatID)
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := db.Migrate(cfg.Postgres.DSN, migrations.FS); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	log.Info("db connected")

	productsRepo := products.NewRepo(pool)
	bomRepo := bom.NewRepo(pool)
	plansRepo := production.NewRepo(pool)
	txRepo := inventory.NewRepo(pool)
	ordersRepo := orders.NewRepo(pool)

	engine := bom.NewEngine(productsRepo, bomRepo, log)
	stock := inventory.NewService(txRepo, productsRepo, stockNotifier(cfg, log), log)

	handler := httpx.NewRouter(httpx.Deps{
		Log:           log,
		Metrics:       metrics.New(prometheus.DefaultRegisterer),
		ExposeMetrics: cfg.Metrics.Enabled,
		Engine:        engine,
		Edges:         bomRepo,
		Products:      productsRepo,
		Categories:    catalog.NewRepo(pool),
		Stock:         stock,
		Transactions:  txRepo,
		Counts:        txRepo,
		Plans:         plansRepo,
		Production:    production.NewService(plansRepo, engine, stock, log),
		Orders:        ordersRepo,
		Ordering:      orders.NewService(ordersRepo, stock, log),
	})

	srv := httpx.New(cfg.HTTP.Addr, handler)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTP.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("http server error", "err", err)
		os.Exit(1)
	}
	log.Info("graceful shutdown complete")
}
