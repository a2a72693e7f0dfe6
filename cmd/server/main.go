package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdesk/internal/auth"
	"taskdesk/internal/config"
	"taskdesk/internal/database"
	"taskdesk/internal/handlers"
	"taskdesk/internal/logger"
	"taskdesk/internal/realtime"
	"taskdesk/internal/routes"
	"taskdesk/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		seed    bool
	)
	cmd := &cobra.Command{
		Use:           "taskdesk-server",
		Short:         "Task API backing the taskdesk client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			log := logger.New("taskdesk-server", cfg.Logging.Level, cfg.Logging.Format)
			if err := run(cmd.Context(), cfg, log, seed); err != nil {
				log.WithError(err).Error("server stopped")
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default searches ./config.yaml and the user config dir)")
	cmd.Flags().BoolVar(&seed, "seed", false, "insert sample users and tasks into an empty database")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger, seed bool) error {
	auth.Configure(auth.Settings{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL,
	})

	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Server.DBPath, gormlogger.Warn)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	log.WithField("path", cfg.Server.DBPath).Info("database ready")

	if seed {
		res, err := database.Seed(db)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"users": res.Users, "tasks": res.Tasks}).Info("database seeded")
	}

	disk, err := storage.NewDisk(cfg.Server.UploadDir)
	if err != nil {
		return err
	}

	h := handlers.New(handlers.Options{
		DB:             db,
		Hub:            realtime.NewHub(),
		Disk:           disk,
		Log:            logger.Component(log, "api"),
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           routes.SetupRoutes(h, logger.Component(log, "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
