// Command sweeper runs one overdue sweep and exits. Intended for cron or a
// systemd timer; scheduling stays outside the engine.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibkit/library-circulation-go/features/command/sweepoverdueloans"
	"github.com/bibkit/library-circulation-go/recordstore/postgresengine"
	"github.com/bibkit/library-circulation-go/shell"
	"github.com/bibkit/library-circulation-go/shell/config"
)

const sweepTimeout = 5 * time.Minute

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

	handler := sweepoverdueloans.NewCommandHandler(
		store,
		shell.SystemClock{},
		postgresengine.NewSequenceGenerator(store),
		shell.LogNotificationSender{Logger: logger},
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	result, sweepErr := handler.Handle(ctx, sweepoverdueloans.BuildCommand())
	if sweepErr != nil {
		logger.Error("sweep failed", "error", sweepErr.Error())
		os.Exit(1)
	}

	logger.Info("sweep completed",
		"loans_examined", result.LoansExamined,
		"loans_fined", result.LoansFined,
		"loans_skipped", result.LoansSkipped,
		"notify_failures", result.NotifyFailures,
	)
}
