package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/camp-scoreboard/internal/app"
	"github.com/riskibarqy/camp-scoreboard/internal/config"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
)

// teamFlag collects repeated -team values; comma lists are split too.
type teamFlag []string

func (f *teamFlag) String() string {
	return strings.Join(*f, ",")
}

func (f *teamFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if id := strings.TrimSpace(part); id != "" {
			*f = append(*f, id)
		}
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var teams teamFlag
	dryRun := flag.Bool("dry-run", false, "report drift without repairing aggregates")
	workers := flag.Int("workers", 0, "parallel team checks, 0 uses RECONCILE_WORKERS")
	flag.Var(&teams, "team", "team id to check, repeatable; all teams when omitted")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "job", "reconcile")
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build runtime", "error", err)
		return 1
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			logger.Error("close runtime", "error", err)
		}
	}()
	if rt.StoreKind != "postgres" {
		logger.Warn("reconciling the in-memory store only checks the default seed")
	}

	maxWorkers := *workers
	if maxWorkers <= 0 {
		maxWorkers = cfg.ReconcileWorkers
	}
	result, err := rt.Services.Reconcile.Reconcile(ctx, usecase.ReconcileInput{
		TeamIDs:    teams,
		DryRun:     *dryRun,
		MaxWorkers: maxWorkers,
	})
	if err != nil {
		logger.Error("reconcile failed", "error", err)
		return 1
	}

	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		return 1
	}
	fmt.Println(string(out))

	switch {
	case result.FailedCount > 0:
		return 1
	case *dryRun && result.DriftCount > 0:
		return 3
	default:
		return 0
	}
}
