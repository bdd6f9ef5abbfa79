package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/snapp-incubator/telemock/internal/capture"
	"github.com/snapp-incubator/telemock/internal/config"
	"github.com/snapp-incubator/telemock/internal/dispatch"
	"github.com/snapp-incubator/telemock/internal/logging"
	"github.com/snapp-incubator/telemock/internal/metrics"
	"github.com/snapp-incubator/telemock/internal/server"
	"github.com/snapp-incubator/telemock/internal/storage"
	"github.com/snapp-incubator/telemock/internal/vendor"
)

var (
	help       bool   // Indicates whether to show the help or not
	configPath string // Path of config file
)

func init() {
	flag.BoolVar(&help, "help", false, "Show help")
	flag.StringVar(&configPath, "config", "", "The path of config file")

	// Parse the terminal flags
	flag.Parse()
}

func main() {
	// Usage Demo
	if help {
		flag.Usage()
		return
	}

	c, err := config.LoadHTTP(configPath)
	if err != nil {
		logging.L.Fatal("Failed to load config", zap.Error(err))
	}

	if err := logging.InitializeLogger(c.LogLevel, c.LogFormat); err != nil {
		logging.L.Fatal("Failed to initialize logger", zap.Error(err))
	}

	logging.L.Info("Logger initialized",
		zap.String("log_level", c.LogLevel),
		zap.String("log_format", c.LogFormat),
	)

	table, err := vendor.Default()
	if err != nil {
		logging.L.Fatal("Invalid vendor table", zap.Error(err))
	}

	store := capture.NewStore()
	if err := metrics.RegisterStoreGauge(store.Count); err != nil {
		logging.L.Fatal("Failed to register the store gauge", zap.Error(err))
	}

	strg, err := storage.New(c.StorageType)
	if err != nil {
		logging.L.Fatal("Unknown storage type", zap.String("storage_type", c.StorageType), zap.Error(err))
	}
	logging.L.Info("Using storage backend", zap.String("storage_type", c.StorageType))

	queue := storage.NewQueue(strg, c.Worker.Count, c.Worker.QueueSize, c.StoreHeaders)

	d := dispatch.New(table, store,
		dispatch.WithRecorder(queue),
		dispatch.WithMaxBodyBytes(c.MaxBodyBytes),
	)

	srv := &http.Server{
		Addr: c.Bind,
		Handler: server.New(d, store, table, server.Config{
			RecentLimit:  c.RecentLimit,
			MaxBodyBytes: c.MaxBodyBytes,
		}),
	}

	go func() {
		logging.L.Info("Starting HTTP server",
			zap.String("address", c.Bind),
			zap.Int("rules", len(table.Rules())),
			zap.Strings("supported", table.Supported()),
		)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("HTTP server ListenAndServe Error: %v", err)
		}
	}()

	if c.Metrics.Enabled {
		go metrics.InitializeHTTP(c.Metrics.Bind)
	}

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	logging.L.Debug("Closing HTTP connections")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.L.Error("Error in shutting down the HTTP server", zap.Error(err))
	}

	queue.Close()

	health := store.Health()
	logging.L.Info("HTTP server is shut down",
		zap.Int("total_payloads", health.TotalPayloads),
		zap.Float64("uptime", health.Uptime),
	)
	_ = logging.L.Sync()
}
