package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"tradefeed/crawler/internal/config"
	"tradefeed/crawler/internal/container"
	"tradefeed/crawler/internal/monitoring"
	"tradefeed/crawler/internal/service"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultConcurrency = 8

type stage func(ctx context.Context, svc *service.Service, concurrency int) error

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Fatalf("Application exited with error: %v", err)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "tradefeed",
		Short:         "Marketplace crawler and advertising feed generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (YAML, default ./config.yaml)")

	cmd.AddCommand(
		stageCmd(&configPath, "dump-category-map", "Resolve the category tree and save the category map",
			func(ctx context.Context, svc *service.Service, n int) error { return svc.DumpCategoryMap(ctx, n) }),
		stageCmd(&configPath, "dump-company-links", "Collect company links of every category",
			func(ctx context.Context, svc *service.Service, n int) error { return svc.DumpCompanyLinks(ctx, n) }),
		stageCmd(&configPath, "dump-companies", "Resolve saved company links into companies",
			func(ctx context.Context, svc *service.Service, n int) error { return svc.DumpCompanies(ctx, n) }),
		stageCmd(&configPath, "dump-feeds", "Harvest products of saved companies and write the feeds",
			func(ctx context.Context, svc *service.Service, n int) error { return svc.DumpFeeds(ctx, n) }),
	)

	return cmd
}

func stageCmd(configPath *string, use, short string, run stage) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := configureLogging(cfg.Log); err != nil {
				return err
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = cfg.Crawl.Concurrency
			}
			if concurrency < 1 {
				return fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
			}

			return execute(cmd.Context(), cfg, use, concurrency, run)
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", defaultConcurrency, "Number of concurrent workers")

	return cmd
}

func execute(ctx context.Context, cfg *config.Config, name string, concurrency int, run stage) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("Starting %s...", name)

	app, err := container.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := monitoring.Serve(ctx, cfg.Metrics.Addr, app.Metrics); err != nil {
				log.Errorf("❌ Metrics server failed: %v", err)
			}
		}()
	}

	if err := run(ctx, app.Service, concurrency); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	log.Infof("%s finished successfully", name)
	return nil
}

func configureLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
