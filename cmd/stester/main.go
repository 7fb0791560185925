// Command stester compiles a solution, runs it over a directory of tests in
// parallel (optionally under sio2jail) and reports per-test verdicts.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/sio2tools/stester/internal/config"
	"github.com/sio2tools/stester/internal/gather"
	"github.com/sio2tools/stester/internal/gather/natsgath"
	"github.com/sio2tools/stester/internal/gather/termgath"
	"github.com/sio2tools/stester/internal/judge"
	"github.com/sio2tools/stester/internal/runner"
	"github.com/sio2tools/stester/internal/tempfiles"
)

// every in-flight test needs at most: program stdout, sio2jail report,
// sio2jail stderr, checker stdin, checker stdout
const scratchFilesPerTest = 5

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:      "stester",
		Usage:     "run a solution against a directory of tests and judge the outputs",
		ArgsUsage: "<source file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "stester.toml", Usage: "path to the TOML config file"},
			&cli.StringFlag{Name: "input-dir", Aliases: []string{"i"}, Value: "in", Usage: "directory with test inputs"},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Value: "out", Usage: "directory with reference outputs"},
			&cli.StringFlag{Name: "checker", Usage: "external checker executable (replaces output comparison)"},
			&cli.StringFlag{Name: "compile-command", Usage: "compile command template with <IN> and <OUT> placeholders"},
			&cli.IntFlag{Name: "timeout", Aliases: []string{"t"}, Usage: "per-test timeout in seconds"},
			&cli.IntFlag{Name: "memory", Aliases: []string{"m"}, Usage: "memory limit in KiB (sio2jail only)"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "number of tests run in parallel"},
			&cli.BoolFlag{Name: "sio2jail", Usage: "run tests under the sio2jail sandbox"},
			&cli.StringFlag{Name: "sio2jail-path", Usage: "explicit sio2jail binary path"},
			&cli.StringFlag{Name: "nats-url", Usage: "stream results to this NATS server"},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	source := cmd.Args().First()
	if source == "" {
		return errors.New("a source file argument is required")
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if cmd.IsSet("compile-command") {
		cfg.CompileCommand = cmd.String("compile-command")
	}
	if cmd.IsSet("timeout") {
		cfg.TimeoutSec = int(cmd.Int("timeout"))
	}
	if cmd.IsSet("memory") {
		cfg.MemoryLimitKiB = int64(cmd.Int("memory"))
	}
	if cmd.IsSet("workers") {
		cfg.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("nats-url") {
		cfg.Nats.URL = cmd.String("nats-url")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	gatherers := gather.Multi{termgath.New(os.Stdout)}
	if cfg.Nats.URL != "" {
		nc, err := nats.Connect(cfg.Nats.URL)
		if err != nil {
			return fmt.Errorf("connecting to NATS at %s: %w", cfg.Nats.URL, err)
		}
		defer nc.Close()
		gatherers = append(gatherers, natsgath.New(nc, cfg.Nats.Subject, uuid.NewString()))
	}

	var sandbox *runner.Sio2jail
	if cmd.Bool("sio2jail") {
		if path := cmd.String("sio2jail-path"); path != "" {
			sandbox, err = runner.NewSio2jail(path)
		} else {
			sandbox, err = runner.LocateSio2jail()
		}
		if err != nil {
			return err
		}
		slog.Info("using sio2jail", "path", sandbox.Path())
	}

	scratchDir, err := os.MkdirTemp("", "stester-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	pool := tempfiles.NewPool(cfg.Workers * scratchFilesPerTest)
	if err := pool.Fill(scratchDir); err != nil {
		return err
	}

	gatherers.StartCompilation()
	executable, seconds, err := runner.Compile(ctx, source, scratchDir,
		time.Duration(cfg.CompileTimeoutSec)*time.Second, cfg.CompileCommand)
	if err != nil {
		gatherers.FinishJob(err)
		return err
	}
	gatherers.FinishCompilation(seconds)

	tests, err := judge.DiscoverTests(cmd.String("input-dir"), cfg.InExt)
	if err != nil {
		gatherers.FinishJob(err)
		return err
	}
	if len(tests) == 0 {
		err := fmt.Errorf("no %s files found in %s", cfg.InExt, cmd.String("input-dir"))
		gatherers.FinishJob(err)
		return err
	}

	j := judge.New(judge.Options{
		Executable:     executable,
		CheckerPath:    cmd.String("checker"),
		OutputDir:      cmd.String("output-dir"),
		OutExt:         cfg.OutExt,
		Timeout:        time.Duration(cfg.TimeoutSec) * time.Second,
		Sandbox:        sandbox,
		MemoryLimitKiB: cfg.MemoryLimitKiB,
	}, pool)

	gatherers.StartJob(len(tests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, test := range tests {
		test := test
		g.Go(func() error {
			gatherers.StartTest(test.Name)
			v, res, err := j.RunTest(gctx, test)
			if err != nil {
				// shutdown in progress: drop the test without a verdict
				if errors.Is(err, runner.ErrInterrupted) || errors.Is(err, context.Canceled) {
					return nil
				}
				return fmt.Errorf("test %s: %w", test.Name, err)
			}
			gatherers.FinishTest(v, res)
			return nil
		})
	}

	err = g.Wait()
	if ctx.Err() != nil {
		slog.Warn("interrupted, partial results only")
		err = nil
	}
	gatherers.FinishJob(err)
	return err
}
