package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/wildtrail/safaridesk/internal/config"
	"github.com/wildtrail/safaridesk/internal/db"
	"github.com/wildtrail/safaridesk/internal/filestore"
	"github.com/wildtrail/safaridesk/internal/handler"
	"github.com/wildtrail/safaridesk/internal/job"
	"github.com/wildtrail/safaridesk/internal/middleware"
	"github.com/wildtrail/safaridesk/internal/repo"
	"github.com/wildtrail/safaridesk/internal/schedule"
	"github.com/wildtrail/safaridesk/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "safaridesk",
		Short: "safaridesk booking administration server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the safaridesk server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
	)

	userRepo := repo.NewUserRepo(conn)
	agentRepo := repo.NewAgentRepo(conn)
	bookingRepo := repo.NewBookingRepo(conn)
	documentRepo := repo.NewDocumentRepo(conn)
	shareRepo := repo.NewShareRepo(conn)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	agentService := service.NewAgentService(agentRepo)
	bookingService := service.NewBookingService(bookingRepo, agentRepo)
	documentService := service.NewDocumentService(documentRepo, bookingRepo, store)
	shareService := service.NewShareService(shareRepo, bookingRepo, documentRepo, store, cfg.BaseURL, cfg.Share.DefaultTTLSeconds)

	deps := handler.RouterDeps{
		Auth:        handler.NewAuthHandler(authService),
		Agents:      handler.NewAgentHandler(agentService),
		Bookings:    handler.NewBookingHandler(bookingService),
		Documents:   handler.NewDocumentHandler(documentService),
		Shares:      handler.NewShareHandler(shareService),
		PublicShare: handler.NewPublicShareHandler(shareService),
		JWTSecret:   []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewShareSweepJob(shareService), cfg.Share.SweepCron); err != nil {
		return fmt.Errorf("schedule share sweep: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
