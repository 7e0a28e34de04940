// # cmd/rfocxt/root.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rfocxt/internal/core/app"
	"rfocxt/internal/core/config"
	"rfocxt/internal/core/errors"
	"rfocxt/internal/shared/observability"
)

const versionString = "0.1.0"

type cliOptions struct {
	project      string
	configPath   string
	callsDir     string
	outputDir    string
	workers      int
	bodies       string
	annotate     bool
	onParseError string
	include      []string
	exclude      []string
	watch        bool
	verbose      bool
}

func newRootCommand(opts *cliOptions, stdout, stderr io.Writer, code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rfocxt --project <crate>",
		Short: "Build focal contexts for every function of a Rust crate",
		Long: `rfocxt resolves the module tree of a Cargo package, indexes every function,
type and trait, and writes one self-contained source slice per function:
the function itself plus everything it calls or names, transitively.`,
		Version:       versionString,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			*code = execute(cmd, opts, stderr)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.project, "project", "p", "", "Path to the crate (directory holding Cargo.toml)")
	pf.StringVar(&opts.configPath, "config", "", "Path to config file (default <project>/rfocxt.toml)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	_ = cmd.MarkPersistentFlagRequired("project")

	f := cmd.Flags()
	f.StringVar(&opts.callsDir, "calls-dir", "", "Directory of per-function callsandtypes records")
	f.StringVar(&opts.outputDir, "out", "", "Directory the contexts are written to")
	f.IntVar(&opts.workers, "workers", 0, "Closure workers (0 = number of CPUs)")
	f.StringVar(&opts.bodies, "bodies", "", "Function bodies to emit: all or focal")
	f.BoolVar(&opts.annotate, "annotate", false, "Prefix every emitted item with its canonical name")
	f.StringVar(&opts.onParseError, "on-parse-error", "", "Parse error policy: skip or abort")
	f.StringSliceVar(&opts.include, "include", nil, "Only build functions matching these globs")
	f.StringSliceVar(&opts.exclude, "exclude", nil, "Skip functions matching these globs")
	f.BoolVar(&opts.watch, "watch", false, "Rebuild whenever sources change")

	cmd.AddCommand(newHistoryCommand(opts, stdout, stderr, code))
	return cmd
}

// Run parses args, runs the selected command and returns the process exit
// status.
func Run(args []string, stdout, stderr io.Writer) int {
	var opts cliOptions
	code := errors.ExitOK
	cmd := newRootCommand(&opts, stdout, stderr, &code)
	cmd.SetArgs(args)
	// Flag and argument errors surface here, before RunE is reached.
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return errors.ExitFailure
	}
	return code
}

func execute(cmd *cobra.Command, opts *cliOptions, stderr io.Writer) int {
	logger := configureLogging(stderr, opts.verbose)

	root, err := config.ProjectRoot(opts.project)
	if err != nil {
		logger.Error("failed to resolve project", "error", err)
		return errors.ExitFailure
	}

	cfg, err := loadConfig(opts.configPath, root)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return errors.ExitFailure
	}
	applyOverrides(cmd, opts, cfg)
	if err := config.Validate(cfg); err != nil {
		logger.Error("invalid options", "error", err)
		return errors.ExitFailure
	}

	paths, err := config.ResolvePaths(cfg, root)
	if err != nil {
		logger.Error("failed to resolve runtime paths", "error", err)
		return errors.ExitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, cfg.Observability.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		return errors.ExitFailure
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	a, err := app.New(cfg, paths, logger)
	if err != nil {
		logger.Error("failed to initialize app", "error", err)
		return errors.ExitCode(err)
	}
	defer a.Close()

	if opts.watch {
		err = a.Watch(ctx)
	} else {
		_, err = a.Run(ctx)
	}
	if err != nil {
		code := errors.ExitCode(err)
		logger.Error("build failed", "error", err, "exit_code", code)
		return code
	}
	return errors.ExitOK
}

func configureLogging(out io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig reads an explicit --config strictly. Without one, the
// project's rfocxt.toml is optional.
func loadConfig(path, root string) (*config.Config, error) {
	if strings.TrimSpace(path) != "" {
		return config.Load(path)
	}
	return config.LoadOptional(filepath.Join(root, config.DefaultFile))
}

// applyOverrides copies explicitly set flags over the file configuration.
func applyOverrides(cmd *cobra.Command, opts *cliOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("calls-dir") {
		cfg.Paths.CallsDir = fromWorkingDir(opts.callsDir)
	}
	if flags.Changed("out") {
		cfg.Paths.OutputDir = fromWorkingDir(opts.outputDir)
	}
	if flags.Changed("workers") {
		cfg.Closure.Workers = opts.workers
	}
	if flags.Changed("bodies") {
		cfg.Emit.Bodies = opts.bodies
	}
	if flags.Changed("annotate") {
		cfg.Emit.Annotate = opts.annotate
	}
	if flags.Changed("on-parse-error") {
		cfg.Parse.OnError = opts.onParseError
	}
	if flags.Changed("include") {
		cfg.Closure.Include = opts.include
	}
	if flags.Changed("exclude") {
		cfg.Closure.Exclude = opts.exclude
	}
}

// fromWorkingDir anchors a relative flag path at the working directory
// rather than the project root the config file paths are relative to.
func fromWorkingDir(p string) string {
	if strings.TrimSpace(p) == "" || filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
