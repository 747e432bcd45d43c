package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/Spok95/factory-stock/internal/bot"
	"github.com/Spok95/factory-stock/internal/config"
	"github.com/Spok95/factory-stock/internal/domain/catalog"
	"github.com/Spok95/factory-stock/internal/domain/inventory"
	"github.com/Spok95/factory-stock/internal/domain/orders"
	"github.com/Spok95/factory-stock/internal/infra/db"
	httpx "github.com/Spok95/factory-stock/internal/infra/http"
	"github.com/Spok95/factory-stock/internal/infra/logger"
	"github.com/Spok95/factory-stock/internal/infra/metrics"
	"github.com/Spok95/factory-stock/internal/stock"
)

func main() {
	cfgPath := flag.StringP("config", "c", "config/example.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.App.Env)
	if err := run(cfg, log); err != nil {
		log.Error("stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	cat := catalog.New()
	for _, p := range cfg.Catalog.Products {
		if err := cat.Add(catalog.Product{Name: p.Name, Stock: p.Stock, Unit: p.Unit}); err != nil {
			return err
		}
	}
	log.Info("catalog loaded", "products", len(cfg.Catalog.Products))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []stock.Option{
		stock.WithLogger(log),
		stock.WithLocation(loc),
		stock.WithObserver(metrics.New(reg)),
	}

	if cfg.Postgres.Enabled {
		if err := db.Migrate(cfg.Postgres.DSN); err != nil {
			return err
		}
		log.Info("migrations applied")

		pool, err := db.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info("db connected")
		opts = append(opts, stock.WithJournal(inventory.NewRepo(pool)))
	}

	svc := stock.New(cat, inventory.NewLedger(), orders.NewBook(), opts...)
	if _, err := svc.Restore(ctx); err != nil {
		return err
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	srv := httpx.New(cfg.HTTP.Addr, httpx.NewHandler(log, svc, metricsHandler))
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	if cfg.Telegram.Token != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		log.Info("telegram bot authorized", "username", api.Self.UserName)
		go func() {
			if err := bot.New(api, log, svc).Run(ctx, cfg.Telegram.Timeout); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("bot stopped", "err", err)
			}
		}()
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
	return nil
}
