package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"BetPulse/pkg/config"
	xhttp "BetPulse/pkg/http"
	pkgkafka "BetPulse/pkg/kafka"
	applogger "BetPulse/pkg/logger"
)

// Exporter is a background job started with the app and stopped on shutdown.
type Exporter interface {
	Start(ctx context.Context)
	Stop()
}

// Components groups what the app runs. Nil members are disabled features.
type Components struct {
	HTTPServer  *xhttp.Server
	FetchClient *xhttp.Client
	Consumer    *pkgkafka.Consumer
	Producer    *pkgkafka.Producer
	Exporter    Exporter
	// Closers are released last, in order.
	Closers []io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg    *config.Config
	logger *applogger.Logger
	c      Components
	stop   chan os.Signal
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, c Components) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, logger: l, c: c, stop: make(chan os.Signal, 1)}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		a.shutdown()
		return err
	}

	signal.Notify(a.stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(a.stop)
	<-a.stop

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// Start launches every configured component without blocking.
func (a *App) Start(ctx context.Context) error {
	if a.c.Producer != nil && a.cfg.Logger.ErrorTopic != "" {
		a.logger.AddCollector(&applogger.CollectionConfig{
			Interval:   a.cfg.Logger.FlushInterval,
			MaxEntries: a.cfg.Logger.FlushCount,
			Topic:      a.cfg.Logger.ErrorTopic,
			Source:     "betpulse-" + a.cfg.Environment,
			Publisher:  a.c.Producer,
		})
		a.logger.Info("error log collector enabled", applogger.String("topic", a.cfg.Logger.ErrorTopic))
	}

	if a.c.Consumer != nil {
		if err := a.c.Consumer.Start(); err != nil {
			return err
		}
		a.logger.Info("kafka consumer started", applogger.String("topic", a.cfg.Kafka.RecordsTopic))
	}

	if a.c.Exporter != nil {
		a.c.Exporter.Start(ctx)
	}

	if a.c.HTTPServer == nil {
		return errors.New("http server is not configured")
	}
	return a.c.HTTPServer.Start()
}

// Shutdown triggers the same path as SIGTERM.
func (a *App) Shutdown() {
	select {
	case a.stop <- syscall.SIGTERM:
	default:
	}
}

// shutdown stops intake first, then background work, then infrastructure.
func (a *App) shutdown() error {
	a.logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()

	var errs []error
	if a.c.HTTPServer != nil {
		if err := a.c.HTTPServer.Stop(ctx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if a.c.FetchClient != nil {
		a.c.FetchClient.AbortAllRequests()
	}
	if a.c.Exporter != nil {
		a.c.Exporter.Stop()
	}
	if a.c.Consumer != nil {
		if err := a.c.Consumer.Stop(ctx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	// Flush aggregated errors before the producer goes away.
	a.logger.RemoveCollector()
	if a.c.Producer != nil {
		if err := a.c.Producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	for _, c := range a.c.Closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg != nil && a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
