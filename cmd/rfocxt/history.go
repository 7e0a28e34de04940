// # cmd/rfocxt/history.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"rfocxt/internal/core/config"
	"rfocxt/internal/core/errors"
	"rfocxt/internal/data/history"
)

type historyOptions struct {
	runID string
	since string
}

func newHistoryCommand(opts *cliOptions, stdout, stderr io.Writer, code *int) *cobra.Command {
	var hopts historyOptions
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded builds, or the contexts of one build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			*code = showHistory(opts, &hopts, stdout, stderr)
			return nil
		},
	}
	cmd.Flags().StringVar(&hopts.runID, "run", "", "Show the contexts recorded by this run id")
	cmd.Flags().StringVar(&hopts.since, "since", "", "Only runs started within this duration (e.g. 24h) or after this RFC 3339 time")
	return cmd
}

func showHistory(opts *cliOptions, hopts *historyOptions, stdout, stderr io.Writer) int {
	logger := configureLogging(stderr, opts.verbose)

	since, err := parseSince(hopts.since, time.Now())
	if err != nil {
		logger.Error("invalid --since", "error", err)
		return errors.ExitFailure
	}
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
	paths, err := config.ResolvePaths(cfg, root)
	if err != nil {
		logger.Error("failed to resolve runtime paths", "error", err)
		return errors.ExitFailure
	}
	if _, err := os.Stat(paths.HistoryPath); err != nil {
		logger.Error("no build history recorded", "path", paths.HistoryPath)
		return errors.ExitFailure
	}

	store, err := history.Open(paths.HistoryPath)
	if err != nil {
		logger.Error("failed to open history", "path", paths.HistoryPath, "error", err)
		return errors.ExitFailure
	}
	defer store.Close()

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	if hopts.runID != "" {
		rows, err := store.LoadContexts(hopts.runID)
		if err != nil {
			logger.Error("failed to load contexts", "run", hopts.runID, "error", err)
			return errors.ExitFailure
		}
		fmt.Fprintln(tw, "FUNCTION\tFUNCTIONS\tTYPES\tUNRESOLVED")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", r.Function, r.Functions, r.Types, r.Unresolved)
		}
		_ = tw.Flush()
		return errors.ExitOK
	}

	runs, err := store.LoadRuns(paths.ProjectRoot, since)
	if err != nil {
		logger.Error("failed to load runs", "error", err)
		return errors.ExitFailure
	}
	fmt.Fprintln(tw, "RUN\tSTARTED\tCRATE\tFUNCTIONS\tEMITTED\tSKIPPED\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Crate, r.Functions, r.Emitted, r.Skipped, r.Failed)
	}
	_ = tw.Flush()
	return errors.ExitOK
}

// parseSince accepts a look-back duration or an absolute RFC 3339 time.
func parseSince(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither a duration nor an RFC 3339 time", raw)
	}
	return t, nil
}
