package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"spckit/app"
	"spckit/internal"
	"spckit/internal/api"
	"spckit/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	bootLog := internal.NewDefaultLogger()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		bootLog.Debug("no .env file found, using system environment variables")
	}

	appConfig, err := config.Load(os.Getenv("SPC_CONFIG_FILE"))
	if err != nil {
		bootLog.WithError(err).Fatal("failed to load configuration")
	}

	logger, err := internal.NewLogger(appConfig.Log.Level, appConfig.Log.Format, os.Stderr)
	if err != nil {
		bootLog.WithError(err).Fatal("failed to create logger")
	}
	gin.SetMode(appConfig.Server.GinMode)

	svc, err := app.NewAnalysisServiceFromConfig(appConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create analysis service")
	}
	server := api.NewServer(svc, appConfig.Upload.MaxBytes, logger)

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.WithField("port", appConfig.Server.Port).Info("starting spckit server")
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
