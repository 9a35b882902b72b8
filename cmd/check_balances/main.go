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

const cliActor = "system:check-balances"

// check_balances compares cached balances against the balances recomputed
// from the transaction log for every account (or one with --user). With
// --fix, drifted projections are overwritten. Exits 1 when mismatches remain
// unfixed, so cron can alert on it.
func main() {
	fix := flag.Bool("fix", false, "overwrite drifted cached balances")
	user := flag.String("user", "", "check a single account ID")
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

	var accountIDs []string
	if *user != "" {
		accountIDs = []string{*user}
	} else {
		accounts, err := repos.AccountRepo.ListAccounts(ctx, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list accounts: %v\n", err)
			os.Exit(1)
		}
		for _, a := range accounts {
			accountIDs = append(accountIDs, a.AccountID)
		}
	}

	mismatches := 0
	for _, accountID := range accountIDs {
		account, err := repos.AccountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load account %s: %v\n", accountID, err)
			os.Exit(1)
		}
		balance, wallet, err := container.Ledger.Recompute(ctx, accountID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to recompute account %s: %v\n", accountID, err)
			os.Exit(1)
		}

		if account.Balance.Equal(balance) && account.WalletBalance.Equal(wallet) {
			continue
		}
		mismatches++
		fmt.Printf("MISMATCH %s (%s): cached balance=%s recomputed=%s, cached wallet=%s recomputed=%s\n",
			account.AccountID, account.Name, account.Balance, balance, account.WalletBalance, wallet)

		if *fix {
			if _, err := container.Ledger.ReconcileOne(ctx, accountID, cliActor); err != nil {
				fmt.Fprintf(os.Stderr, "failed to fix account %s: %v\n", accountID, err)
				os.Exit(1)
			}
			fmt.Printf("FIXED    %s\n", account.AccountID)
		}
	}

	fmt.Printf("checked %d accounts, %d mismatches\n", len(accountIDs), mismatches)
	if mismatches > 0 && !*fix {
		os.Exit(1)
	}
}
