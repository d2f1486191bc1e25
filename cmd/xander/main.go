package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/xander/internal/config"
	"github.com/udisondev/xander/internal/sim"
	"github.com/udisondev/xander/internal/telemetry"
)

const ConfigPath = "config/xander.yaml"

var errUsage = errors.New("usage: xander SCRIPT.yaml...")

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfgPath := ConfigPath
	if p := os.Getenv("XANDER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulator(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	if len(args) == 0 {
		return errUsage
	}

	shutdown, err := telemetry.Setup(ctx, "xander", cfg.Trace, os.Stdout)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("flushing spans", "err", err)
		}
	}()

	slog.Info("xander starting", "scripts", len(args), "workers", cfg.Workers, "seed", cfg.Seed)

	scripts := make([]*sim.Script, len(args))
	for i, path := range args {
		if scripts[i], err = sim.LoadScript(path); err != nil {
			return err
		}
	}

	reports, err := replayAll(ctx, cfg, scripts)
	if err != nil {
		return err
	}
	for _, rep := range reports {
		slog.Info("encounter finished",
			"script", rep.Script,
			"seed", rep.Seed,
			"rounds", rep.Round,
			"events", len(rep.Events),
			"survivors", strings.Join(rep.Survivors, ","))
		fmt.Print(rep.Summary())
	}
	return nil
}

// replayAll runs the scripts concurrently, at most cfg.Workers at a time.
// Reports come back in script order.
func replayAll(ctx context.Context, cfg config.Simulator, scripts []*sim.Script) ([]*sim.Report, error) {
	opts := sim.Options{
		StatblockDir: cfg.StatblockDir,
		Arena:        sim.ArenaSize{Width: cfg.Arena.Width, Height: cfg.Arena.Height},
	}

	reports := make([]*sim.Report, len(scripts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, s := range scripts {
		g.Go(func() error {
			o := opts
			o.Seed = scriptSeed(cfg.Seed, s.Name)
			rep, err := sim.Run(gctx, s, o)
			if err != nil {
				return fmt.Errorf("script %s: %w", s.Name, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// scriptSeed derives a per-script seed: the first 8 bytes of
// BLAKE2b-256(master || name). Scripts with their own seed ignore it.
func scriptSeed(master uint64, name string) uint64 {
	buf := make([]byte, 8, 8+len(name))
	binary.BigEndian.PutUint64(buf, master)
	sum := blake2b.Sum256(append(buf, name...))
	return binary.BigEndian.Uint64(sum[:8])
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
