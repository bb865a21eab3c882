// Command circulationd serves the circulation engine's HTTP API.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibkit/library-circulation-go/httpapi"
	"github.com/bibkit/library-circulation-go/recordstore/postgresengine"
	"github.com/bibkit/library-circulation-go/shell"
	"github.com/bibkit/library-circulation-go/shell/config"
)

func main() {
	config.LoadDotEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	pool, poolErr := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolConfig())
	if poolErr != nil {
		log.Fatal("Failed to create connection pool, error: ", poolErr)
	}
	defer pool.Close()

	storeOptions := []postgresengine.Option{postgresengine.WithLogger(logger)}
	if prefix := config.TablePrefix(); prefix != "" {
		storeOptions = append(storeOptions, postgresengine.WithTablePrefix(prefix))
	}

	store, storeErr := postgresengine.NewStoreFromPGXPool(pool, storeOptions...)
	if storeErr != nil {
		log.Fatal("Failed to create record store, error: ", storeErr)
	}

	api := httpapi.NewAPI(
		store,
		shell.SystemClock{},
		postgresengine.NewSequenceGenerator(store),
		shell.LogNotificationSender{Logger: logger},
		logger,
	)

	server := http.Server{
		Addr:    config.HTTPListenAddress(),
		Handler: api.Router(),
	}

	go func() {
		logger.Info("server starting", "address", server.Addr)

		if serveErr := server.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			log.Fatal("Server failed, error: ", serveErr)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
		log.Fatal("Graceful shutdown failed, error: ", shutdownErr)
	}

	logger.Info("server shut down")
}
