package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"restaurant-ordering/internal/app/api"
	"restaurant-ordering/internal/app/notify"
	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/config"
	"restaurant-ordering/internal/connections/database"
	"restaurant-ordering/internal/connections/rabbitmq"
	menurepo "restaurant-ordering/internal/microservices/menu/repository"
	menusvc "restaurant-ordering/internal/microservices/menu/service"
)

const modes = "api | notifier | migrate | seed-menu"

func main() {
	mode := flag.String("mode", "", modes)
	cfgPath := flag.String("config", "", "path to YAML config (default: first of config.yaml, config.yml, deploy/config.example.yaml)")
	port := flag.Int("port", 0, "api: http port, overrides http.port")
	maxConc := flag.Int("max-concurrent", 0, "api: max concurrent requests, overrides http.max_concurrent")
	prefetch := flag.Int("prefetch", 1, "notifier: RabbitMQ prefetch")
	consumer := flag.String("consumer-name", "", "notifier: consumer tag")
	metricsPort := flag.Int("metrics-port", 9102, "notifier: port for /metrics and /healthz, 0 disables")
	flag.Parse()

	lg := logger.New("bootstrap")
	if *mode == "" {
		fmt.Fprintln(os.Stderr, "--mode is required: "+modes)
		os.Exit(2)
	}

	path := *cfgPath
	if path == "" {
		var err error
		if path, err = config.FindConfig(); err != nil {
			lg.Error("config_not_found", err, nil)
			os.Exit(2)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": path})
		os.Exit(2)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}
	if *maxConc != 0 {
		cfg.HTTP.MaxConcurrent = *maxConc
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *mode, cfg, notify.Config{Consumer: *consumer, Prefetch: *prefetch, MetricsPort: *metricsPort}); err != nil {
		lg.Error("fatal", err, map[string]any{"mode": *mode})
		os.Exit(1)
	}
}

func run(ctx context.Context, mode string, cfg config.App, nc notify.Config) error {
	lg := logger.New(mode)

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	lg.Info("db_connected", map[string]any{"host": cfg.Database.Host, "database": cfg.Database.Database})

	switch mode {
	case "migrate":
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		lg.Info("schema_applied", nil)
		return nil
	case "seed-menu":
		items, err := menusvc.DefaultMenu()
		if err != nil {
			return err
		}
		n, err := menusvc.NewMenuService(menurepo.NewMenuRepository(db), nil).Seed(ctx, items)
		if err != nil {
			return err
		}
		lg.Info("menu_seeded", map[string]any{"inserted": n, "total": len(items)})
		return nil
	case "api", "notifier":
	default:
		return fmt.Errorf("unknown mode %q, want %s", mode, modes)
	}

	rmq, err := rabbitmq.Dial(cfg.RabbitMQ)
	if err != nil {
		return fmt.Errorf("rabbitmq connect: %w", err)
	}
	defer rmq.Close()
	if err := rmq.DeclareTopology(); err != nil {
		return err
	}
	lg.Info("rabbitmq_connected", map[string]any{"host": cfg.RabbitMQ.Host, "vhost": cfg.RabbitMQ.VHost})

	if mode == "api" {
		return api.Run(ctx, cfg, db, rmq, logger.New("api"))
	}
	return notify.Run(ctx, cfg, nc, db, rmq, logger.New("notifier"))
}
