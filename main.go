package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"medstock/m/internal/api"
	"medstock/m/internal/config"
	"medstock/m/internal/database"
	"medstock/m/internal/logging"
	"medstock/m/internal/metrics"
	"medstock/m/internal/migrations"
	"medstock/m/internal/seed"
	"medstock/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	database.LogVersion(ctx, db)

	if err := migrations.Run(db); err != nil {
		logrus.WithError(err).Fatal("failed to initialize schema")
	}

	inventory := store.New(db)
	if cfg.SeedCSV != "" {
		if _, err := seed.LoadStock(ctx, inventory, cfg.SeedCSV); err != nil {
			logrus.WithError(err).Error("unable to seed initial stock")
		}
	}

	handler := api.New(inventory, metrics.New(), cfg.CORSOrigins)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.Infof("medicine inventory server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logrus.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Fatal("server error")
	}
}
