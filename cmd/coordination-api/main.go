package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coordination-api/apiconfig"
	"coordination-api/coordination/keeper"
	"coordination-api/coordination/store"
	"coordination-api/coordination/types"
	"coordination-api/expiry"
	"coordination-api/internal/event"
	natsserver "coordination-api/internal/nats/server"
	"coordination-api/internal/server/admin"
	"coordination-api/internal/server/public"
	"coordination-api/logging"
	"coordination-api/reportstorage"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("COORDINATION_CONFIG"), "path to the yaml configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logging.Error("service exited with error", types.Server, "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configManager, err := apiconfig.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := configManager.GetConfig()

	st, err := store.Open(cfg.Storage.LedgerPath)
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	defer st.Close()

	var reports reportstorage.ReportStorage
	if cfg.Storage.Reports.Type != "" {
		reports, err = reportstorage.NewReportStorage(ctx, cfg.Storage.Reports)
		if err != nil {
			return fmt.Errorf("init report storage: %w", err)
		}
	} else {
		logging.Warn("report storage disabled, inline results will be rejected", types.Storage)
	}

	ns := natsserver.NewServer(cfg.Nats)
	if err := ns.Start(); err != nil {
		return fmt.Errorf("start nats server: %w", err)
	}
	defer ns.Shutdown()

	natsEmitter, err := event.NewNatsEmitter(ns.ClientURL())
	if err != nil {
		return fmt.Errorf("connect event emitter: %w", err)
	}
	defer natsEmitter.Close()

	hub := event.NewHub()
	emitter := event.MultiEmitter{natsEmitter, hub}

	k := keeper.NewKeeper(st, emitter,
		cfg.Authority.Address, cfg.Authority.Responders, cfg.Queries.Ttl())

	seed, err := feeSeed(cfg.Fees)
	if err != nil {
		return err
	}
	if err := k.SeedFeeSchedule(ctx, seed); err != nil {
		return fmt.Errorf("seed fee schedule: %w", err)
	}

	sweeper := expiry.NewSweeper(k, cfg.Queries.SweepInterval(), cfg.Queries.SweepBatchSize)
	defer sweeper.Close()

	publicServer := public.NewServer(k, configManager, reports, hub)
	adminServer := admin.NewServer(k, reports)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Api.PublicServerPort)
		logging.Info("starting public server", types.Server, "addr", addr)
		if err := publicServer.Start(addr); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Api.AdminServerPort)
		logging.Info("starting admin server", types.Server, "addr", addr)
		if err := adminServer.Start(addr); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("shutting down", types.Server)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := publicServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("public server shutdown failed", types.Server, "error", err)
		}
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("admin server shutdown failed", types.Server, "error", err)
		}
		return nil
	})

	return g.Wait()
}

// feeSeed parses the configured fee schedule entries. The ledger wins over the
// seed for types it already knows.
func feeSeed(entries []apiconfig.FeeEntryConfig) ([]types.FeeScheduleEntry, error) {
	out := make([]types.FeeScheduleEntry, 0, len(entries))
	for _, e := range entries {
		fee, err := decimal.NewFromString(e.Fee)
		if err != nil {
			return nil, fmt.Errorf("fee for query type %q: %w", e.QueryType, err)
		}
		out = append(out, types.FeeScheduleEntry{
			QueryType: e.QueryType,
			Fee:       fee,
			Supported: e.Supported,
		})
	}
	return out, nil
}
