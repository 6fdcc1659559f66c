package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/fitlevel/internal/api"
	"github.com/Skufu/fitlevel/internal/config"
	"github.com/Skufu/fitlevel/internal/dataset"
	"github.com/Skufu/fitlevel/internal/logger"
	"github.com/Skufu/fitlevel/internal/risk"
	"github.com/Skufu/fitlevel/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	if cfg.DatasetPath == "" && dataset.EmbeddedIsSynthetic {
		log.Warn("using the bundled synthetic diabetes table; set DATASET_PATH to the original table (raw diabetes.tab.txt is accepted) for real risk scores")
	}

	svc, err := buildService(cfg)
	if err != nil {
		log.WithError(err).Fatal("model initialization failed")
	}
	info := svc.ModelInfo()
	log.WithFields(logrus.Fields{
		"estimators": info.Estimators,
		"train_rows": info.TrainRows,
		"test_rows":  info.TestRows,
		"target_min": info.TargetMin,
		"target_max": info.TargetMax,
		"holdout_r2": fmt.Sprintf("%.3f", info.HoldoutR2),
	}).Info("model fitted")

	ctx := context.Background()
	var db api.AssessmentLog
	if cfg.EnableDB {
		st, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("database connection failed")
		}
		defer st.Close()

		if err := st.EnsureSchema(ctx); err != nil {
			log.WithError(err).Fatal("database schema setup failed")
		}
		db = st
	}

	router := api.NewRouter(svc, db, log, api.Options{
		Strict:      cfg.StrictInput,
		TopFeatures: cfg.TopFeatures,
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
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	log.Infof("server listening on :%s", cfg.Port)
	waitForShutdown(server, log)
}

func buildService(cfg *config.Config) (*risk.Service, error) {
	ds, err := loadDataset(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	return risk.NewService(ds, risk.ModelConfig{
		Estimators: cfg.Estimators,
		Seed:       cfg.Seed,
		TestSize:   cfg.TestSize,
	})
}

func loadDataset(path string) (*dataset.Dataset, error) {
	if path == "" {
		return dataset.LoadEmbedded()
	}
	return dataset.LoadFile(path)
}

func waitForShutdown(server *http.Server, log *logrus.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
