package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/plusprogress/schoolcore/internal/core/services"
	"github.com/plusprogress/schoolcore/internal/notification"
	"github.com/plusprogress/schoolcore/internal/platform/config"
	"github.com/plusprogress/schoolcore/internal/repositories/database/pgsql"
	"github.com/plusprogress/schoolcore/pkg/database"
)

// check_overdue runs a single overdue sweep: every scheduled lesson whose
// start has passed is marked overdue. Intended for cron.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(repos, notification.NewLogSink(logger), 0)

	count, err := container.Overdue.Sweep(ctx, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "overdue sweep failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("marked %d lessons overdue\n", count)
}
