package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/GoSymptom/internal/api"
	"github.com/Skufu/GoSymptom/internal/checker"
	"github.com/Skufu/GoSymptom/internal/config"
	"github.com/Skufu/GoSymptom/internal/diagnosis"
	"github.com/Skufu/GoSymptom/internal/logging"
	"github.com/Skufu/GoSymptom/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	table, err := loadRules(cfg)
	if err != nil {
		logger.Fatalf("rules error: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"version": table.Version,
		"rules":   len(table.Rules),
	}).Info("Rule table loaded")

	ctx := context.Background()
	store, err := storage.Open(ctx, storeOptions(cfg), logger)
	if err != nil {
		logger.Fatalf("store error: %v", err)
	}
	breaker := storage.NewBreaker(store, storage.BreakerSettings{
		Failures: uint32(cfg.BreakerFailures),
		Timeout:  cfg.BreakerTimeout,
	}, logger)
	defer breaker.Close()

	service, err := checker.NewService(
		diagnosis.NewEvaluator(table, logger),
		breaker,
		checker.Options{CacheSize: cfg.CacheSize},
		logger,
	)
	if err != nil {
		logger.Fatalf("service error: %v", err)
	}

	var health api.HealthChecker
	if breaker.Pings() {
		health = breaker
	}

	router := api.NewRouter(api.Options{
		Service:     service,
		Health:      health,
		Logger:      logger,
		StaticRoot:  api.DetectStaticRoot(),
		RateLimit:   api.RateLimitRule{Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
		CORSOrigins: cfg.CORSAllowOrigins,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":  cfg.Port,
		"store": cfg.StoreDriver,
	}).Info("Server listening")
	waitForShutdown(server, logger)
}

func loadRules(cfg *config.Config) (*diagnosis.RuleTable, error) {
	if cfg.RulesFile != "" {
		return diagnosis.LoadRules(cfg.RulesFile)
	}
	return diagnosis.DefaultRules()
}

func storeOptions(cfg *config.Config) storage.Options {
	return storage.Options{
		Driver:      cfg.StoreDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		CSVPath:     cfg.CSVPath,
	}
}

func waitForShutdown(server *http.Server, logger *logrus.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
