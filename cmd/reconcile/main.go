package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/plusprogress/schoolcore/internal/core/services"
	"github.com/plusprogress/schoolcore/internal/notification"
	"github.com/plusprogress/schoolcore/internal/platform/config"
	"github.com/plusprogress/schoolcore/internal/repositories/database/pgsql"
	"github.com/plusprogress/schoolcore/pkg/database"
)

const cliActor = "system:reconcile"

// reconcile repairs drifted balance projections and backfills expenses for
// attended enrollments that were never billed. With --student only that one
// account is reconciled and no backfill runs.
func main() {
	student := flag.String("student", "", "reconcile a single account ID")
	flag.Parse()

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

	if *student != "" {
		result, err := container.Reconcile.ReconcileAccount(ctx, *student, cliActor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to reconcile account %s: %v\n", *student, err)
			os.Exit(1)
		}
		if result.Corrected {
			fmt.Printf("corrected %s: balance %s -> %s, wallet %s -> %s\n",
				result.AccountID, result.OldBalance, result.NewBalance, result.OldWallet, result.NewWallet)
		} else {
			fmt.Printf("account %s is consistent\n", result.AccountID)
		}
		return
	}

	summary, err := container.Reconcile.ReconcileAll(ctx, cliActor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconciliation run failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("checked %d accounts: %d mismatches found, %d corrected, %d expenses backfilled\n",
		summary.AccountsChecked, summary.MismatchesFound, summary.MismatchesCorrected, summary.ExpensesBackfilled)
}
