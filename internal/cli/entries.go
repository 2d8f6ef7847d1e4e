package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/harness"
)

// EntriesOptions holds flags for the entries command.
type EntriesOptions struct {
	*RootOptions
	TraceFlags
}

// EntrySummary describes one entry of a trace.
type EntrySummary struct {
	Timestamp      int64  `json:"timestamp"`
	Windows        int    `json:"windows"`
	VisibleWindows int    `json:"visible_windows"`
	AppWindows     int    `json:"app_windows"`
	Activities     int    `json:"activities"`
	FocusedWindow  string `json:"focused_window"`
}

// EntriesResult is the output of the entries command.
type EntriesResult struct {
	Trace   string         `json:"trace"`
	Digest  string         `json:"digest"`
	Entries []EntrySummary `json:"entries"`
}

// NewEntriesCommand creates the entries command.
func NewEntriesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EntriesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "entries <trace>",
		Short: "List the entries of a trace",
		Long: `List every entry of a trace with its window counts.

Examples:
  wmtrace entries trace.winscope
  wmtrace entries dump.yaml --mode dump
  wmtrace entries trace.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntries(opts, args[0], cmd)
		},
	}
	addTraceFlags(cmd, &opts.TraceFlags)

	return cmd
}

func runEntries(opts *EntriesOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	trace, err := loadTrace(opts.RootOptions, f, path, opts.TraceFlags)
	if err != nil {
		return err
	}

	digest, err := harness.TraceDigest(trace)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to digest trace", err)
	}

	result := EntriesResult{Trace: path, Digest: digest, Entries: []EntrySummary{}}
	for _, e := range trace.Entries() {
		result.Entries = append(result.Entries, EntrySummary{
			Timestamp:      e.Timestamp(),
			Windows:        len(e.WindowStates()),
			VisibleWindows: len(e.VisibleWindows()),
			AppWindows:     len(e.AppWindows()),
			Activities:     len(e.Activities()),
			FocusedWindow:  e.FocusedWindow(),
		})
	}

	if f.IsJSON() {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d entries in %s (digest %s)\n", len(result.Entries), path, digest[:12])
	fmt.Fprintf(w, "%-16s %8s %8s %8s  %s\n", "TIMESTAMP", "WINDOWS", "VISIBLE", "APP", "FOCUSED")
	for _, s := range result.Entries {
		fmt.Fprintf(w, "%-16d %8d %8d %8d  %s\n", s.Timestamp, s.Windows, s.VisibleWindows, s.AppWindows, s.FocusedWindow)
	}
	return nil
}
