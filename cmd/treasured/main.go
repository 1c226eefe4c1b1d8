package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"treasurechain/config"
	"treasurechain/core"
	"treasurechain/core/genesis"
	"treasurechain/core/state"
	"treasurechain/integrations/scoreboard"
	nativecommon "treasurechain/native/common"
	"treasurechain/native/params"
	"treasurechain/observability/logging"
	"treasurechain/rpc"
	"treasurechain/storage"
	"treasurechain/storage/trie"
)

const (
	logMaxSizeMB  = 100
	logMaxBackups = 5
	logMaxAgeDays = 28
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis JSON file (overrides config GenesisFile)")
	allowMigrateFlag := flag.Bool("allow-migrate", false, "Allow starting with a mismatched state schema (manual migrations only)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if path := strings.TrimSpace(*genesisFlag); path != "" {
		cfg.GenesisFile = path
	}

	var logOpts []logging.Option
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logging.WithFile(cfg.LogFile, logMaxSizeMB, logMaxBackups, logMaxAgeDays))
	}
	logger := logging.Setup("treasured", cfg.Environment, logOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *allowMigrateFlag, logger); err != nil {
		logger.Error("treasured stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, allowMigrate bool, logger *slog.Logger) error {
	base, reward, err := cfg.Symbols()
	if err != nil {
		return err
	}
	contract, payout, err := cfg.Accounts()
	if err != nil {
		return err
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	tr, fresh, err := openState(db, cfg, genesis.Options{Contract: contract, Payout: payout, RewardSymbol: reward}, allowMigrate, logger)
	if err != nil {
		return err
	}

	proc, err := core.NewProcessor(tr, core.Options{
		Contract:     contract,
		Payout:       payout,
		BaseSymbol:   base,
		RewardSymbol: reward,
		UnlockQuota: nativecommon.Quota{
			MaxPerEpoch:  cfg.Quotas.Unlock.MaxPerEpoch,
			EpochSeconds: cfg.Quotas.Unlock.EpochSeconds,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	if fresh {
		var seed *params.Seed
		if path := strings.TrimSpace(cfg.ParamsSeedFile); path != "" {
			seed, err = params.LoadSeed(path)
			if err != nil {
				return err
			}
		}
		if err := proc.Bootstrap(seed, cfg.Pauses); err != nil {
			return fmt.Errorf("bootstrap genesis state: %w", err)
		}
		logger.Info("genesis state created", slog.String("root", proc.CurrentRoot().Hex()))
	}

	server := rpc.NewServer(proc, rpc.RateLimit{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, logger)

	if dsn := strings.TrimSpace(cfg.ScoreboardDSN); dsn != "" {
		board, err := scoreboard.Open(dsn, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := board.Close(); err != nil {
				logger.Warn("close scoreboard", slog.Any("error", err))
			}
		}()
		proc.SetEmitter(board)
		server.SetLeaderboard(board)
	}

	height, err := proc.Height()
	if err != nil {
		return err
	}
	logger.Info("treasured ready",
		slog.Uint64("height", height),
		slog.String("root", proc.CurrentRoot().Hex()))
	return server.Serve(ctx, cfg.RPCAddress)
}

// openState resumes from the persisted head or builds genesis on an empty
// data directory. fresh reports whether genesis was just built.
func openState(db storage.Database, cfg *config.Config, opts genesis.Options, allowMigrate bool, logger *slog.Logger) (*trie.Trie, bool, error) {
	root, ok, err := core.ReadHead(db)
	if err != nil {
		return nil, false, err
	}
	if ok {
		tr, err := trie.NewTrie(db, root.Bytes())
		if err != nil {
			return nil, false, fmt.Errorf("open state at %s: %w", root.Hex(), err)
		}
		if err := state.EnsureStateVersion(tr, allowMigrate); err != nil {
			return nil, false, err
		}
		logger.Info("resuming state", slog.String("root", root.Hex()))
		return tr, false, nil
	}

	path := strings.TrimSpace(cfg.GenesisFile)
	if path == "" {
		return nil, false, errors.New("no stored state and no GenesisFile configured")
	}
	spec, err := genesis.LoadGenesisSpec(path)
	if err != nil {
		return nil, false, fmt.Errorf("load genesis spec: %w", err)
	}
	root, err = genesis.BuildGenesis(spec, db, opts)
	if err != nil {
		return nil, false, fmt.Errorf("build genesis: %w", err)
	}
	tr, err := trie.NewTrie(db, root.Bytes())
	if err != nil {
		return nil, false, err
	}
	return tr, true, nil
}
