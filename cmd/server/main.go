package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/vova4o/gonotes/internal/server/flags"
	"github.com/vova4o/gonotes/internal/server/handlers"
	"github.com/vova4o/gonotes/internal/server/service"
	"github.com/vova4o/gonotes/internal/server/storage"
	"github.com/vova4o/gonotes/package/jwtauth"
	"github.com/vova4o/gonotes/package/logger"
	"github.com/vova4o/gonotes/package/passwordhash"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	settings := flags.NewSettings()
	if err := settings.LoadConfig(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("failed to load config: %v", err)
	}

	// Start logger
	logger := logger.NewLogger(settings.GetLogLevel())

	logger.Info("Welcome to the server!")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stor, err := storage.NewStorage(ctx, settings.GetDSN(), logger)
	if err != nil {
		log.Printf("failed to create storage: %v", err)
		return
	}
	defer stor.Close()

	jwtService := jwtauth.NewJWTService(settings.GetSecret(), settings.GetIssuer())
	serv := service.NewService(stor, jwtService, passwordhash.NewHasher(bcrypt.DefaultCost), settings.GetAccessTokenDuration(), logger)

	h := handlers.NewHandlersService(serv, logger)

	srv := &http.Server{
		Addr:              settings.GetAddr(),
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server is running on " + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("failed to serve: " + err.Error())
		}
		return
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), settings.GetShutdownTimeout())
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down gracefully: " + err.Error())
		return
	}
	logger.Info("Server shut down gracefully")
}
