package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/trendlens/tsforecast/internal/server"
)

func main() {
	flags := ParseFlags()

	logger := setupLogger(flags.LogLevel, flags.LogFormat)

	logger.WithFields(logrus.Fields{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
	}).Info("Starting tsforecast server")

	config := server.DefaultConfig()
	config.Host = flags.Host
	config.Port = flags.Port
	config.MetricsPort = flags.MetricsPort
	config.EnableMetrics = flags.EnableMetrics

	srv, err := server.NewServer(config, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create server")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(context.Background())
	}()

	select {
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("Shutdown signal received")
	case err := <-errChan:
		if err != nil {
			logger.WithError(err).Error("Server failed")
		}
	}

	if err := srv.Stop(context.Background()); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	logger.Info("Server stopped")
}

func setupLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
