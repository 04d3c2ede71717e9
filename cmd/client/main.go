package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/vova4o/gonotes/internal/client/flags"
	"github.com/vova4o/gonotes/internal/client/handlers"
	"github.com/vova4o/gonotes/internal/client/notesync"
	"github.com/vova4o/gonotes/internal/client/service"
	"github.com/vova4o/gonotes/internal/client/storage"
	"github.com/vova4o/gonotes/internal/client/ui"
	"github.com/vova4o/gonotes/package/logger"
)

func main() {
	settings := flags.NewSettings()
	if err := settings.LoadConfig(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("Failed to load config: %v", err)
	}

	// логи в stderr, чтобы не смешиваться с выводом интерфейса
	logger := logger.NewConsoleLogger(os.Stderr, settings.GetLogLevel())
	logger.Info("Welcome to the client!")

	stor, err := storage.NewStorage(settings.GetDBPath(), logger)
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}
	defer stor.Close()

	serv := service.NewService(stor, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create new HTTP client for the notes API
	client, err := handlers.NewHTTPClient(ctx, settings.GetBaseURL(), settings.GetTimeout(), logger, serv)
	if err != nil {
		log.Printf("Failed to create API client: %v", err)
		return
	}
	defer client.Close()

	notes := notesync.New(client, logger)

	// Create new UI instance
	u := ui.NewUI(ctx, client, notes, serv, logger, os.Stdin, os.Stdout)

	done := make(chan error, 1)
	go func() {
		done <- u.RunUI()
	}()

	// Graceful shutdown
	select {
	case err := <-done:
		if err != nil {
			logger.Error("UI stopped: " + err.Error())
		}
	case <-ctx.Done():
		logger.Info("Shutting down the client...")
	}

	logger.Info("Client is shut down")
}
