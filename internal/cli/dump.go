package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/harness"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/wm"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	TraceFlags
	At     int64
	Golden string
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump <trace>",
		Short: "Print the container hierarchy of one entry",
		Long: `Print the container hierarchy of the entry at --at.

With --format json the data is the canonical JSON dump used by golden
files and trace digests. --golden writes that dump to
<golden.dir>/<name>.golden.

Examples:
  wmtrace dump trace.yaml --at 9213763541297
  wmtrace dump trace.yaml --at 9213763541297 --format json
  wmtrace dump trace.yaml --at 9213763541297 --golden launcher`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, args[0], cmd)
		},
	}
	addTraceFlags(cmd, &opts.TraceFlags)
	cmd.Flags().Int64Var(&opts.At, "at", 0, "entry timestamp (required)")
	_ = cmd.MarkFlagRequired("at")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "write the canonical dump to <golden.dir>/<name>.golden")

	return cmd
}

func runDump(opts *DumpOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	trace, err := loadTrace(opts.RootOptions, f, path, opts.TraceFlags)
	if err != nil {
		return err
	}
	entry, err := entryAt(f, trace, opts.At)
	if err != nil {
		return err
	}

	if opts.Golden != "" {
		return writeGolden(opts, f, entry, cmd)
	}

	if f.IsJSON() {
		data, err := harness.EntryJSON(entry)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to encode entry", err)
		}
		return f.Success(json.RawMessage(data))
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Entry %d focused_window=%q focused_app=%q\n", entry.Timestamp(), entry.FocusedWindow(), entry.FocusedApp())
	for _, d := range entry.Displays() {
		writeTree(w, d, 1)
	}
	return nil
}

func writeTree(w io.Writer, c wm.Container, depth int) {
	fmt.Fprintf(w, "%s%s bounds=%s\n", strings.Repeat("  ", depth), c, c.Bounds())
	for _, child := range c.Children() {
		writeTree(w, child, depth+1)
	}
}

// GoldenResult is the output of dump --golden.
type GoldenResult struct {
	Timestamp int64  `json:"timestamp"`
	Path      string `json:"path"`
	Bytes     int    `json:"bytes"`
}

func writeGolden(opts *DumpOptions, f *OutputFormatter, entry *wm.Entry, cmd *cobra.Command) error {
	data, err := harness.EntryJSON(entry)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to encode entry", err)
	}

	dir := opts.settings().Golden.Dir
	path := filepath.Join(dir, opts.Golden+".golden")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to create %s", dir), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", path), err)
	}

	result := GoldenResult{Timestamp: entry.Timestamp(), Path: path, Bytes: len(data)}
	if f.IsJSON() {
		return f.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
