package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/in/ws"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog, err := logger.New("dispatch", configs.LogLevel, configs.LogDevelopment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, configs, appLog)
	stop()
	if err != nil {
		appLog.Error("dispatch stopped with error", logger.Error(err))
		_ = appLog.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, configs cmd.Config, appLog logger.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	notifier, err := cmd.NewNotifier(ctx, configs, appLog, m)
	if err != nil {
		return err
	}
	workersCtx, stopWorkers := context.WithCancel(ctx)
	notifier.Start(workersCtx)
	defer func() {
		stopWorkers()
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := notifier.Close(closeCtx); err != nil {
			appLog.Warn("failed to close notifier", logger.Error(err))
		}
	}()

	app := cmd.NewCompositionRoot(configs, gormDB, notifier.Bus(), appLog, m)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return fmt.Errorf("start jobs: %w", err)
	}
	defer jobManager.StopAll()

	return startWebServer(ctx, app, notifier, configs, appLog, m, registry)
}

func startWebServer(
	ctx context.Context,
	app cmd.CompositionRoot,
	notifier *cmd.Notifier,
	configs cmd.Config,
	appLog logger.Logger,
	m *metrics.Metrics,
	registry *prometheus.Registry,
) error {
	auth := httpin.NewAuthenticator(configs.JWTSecret)

	server := httpin.NewServer(app.HTTPHandlers(), auth,
		httpin.WithLogger(appLog),
		httpin.WithMetrics(m, registry),
	)
	e := server.NewEcho()
	server.Register(e)
	ws.NewGateway(notifier.Hub, app.DriverPresence(), auth,
		ws.WithLogger(appLog),
		ws.WithMetrics(m),
	).Register(e)

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("http server listening", logger.String("port", configs.HTTPPort))
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
