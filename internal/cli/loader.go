package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/harness"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/parser"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/snapshot"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/wm"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeTraceParse    = "E010" // Trace could not be decoded or parsed
	ErrCodeEntryNotFound = "E011" // No entry at the requested timestamp
	ErrCodeInvalidArgs   = "E012" // Invalid assertion arguments
	ErrCodeAssertion     = "E013" // Assertion failed
	ErrCodeScenario      = "E020" // Scenario could not be loaded or run
	ErrCodeStore         = "E030" // Report store error
)

// TraceFlags are the trace decoding flags shared by commands that read a
// trace file.
type TraceFlags struct {
	TraceFormat string // auto | yaml | proto; empty uses config
	Mode        string // trace | dump
}

func addTraceFlags(cmd *cobra.Command, tf *TraceFlags) {
	cmd.Flags().StringVar(&tf.TraceFormat, "trace-format", "", "trace encoding (auto|yaml|proto), default from config")
	cmd.Flags().StringVar(&tf.Mode, "mode", harness.ModeTrace, "trace or dump (exactly one snapshot)")
}

func (o *RootOptions) traceFormat(tf TraceFlags) snapshot.Format {
	if tf.TraceFormat != "" {
		return snapshot.Format(tf.TraceFormat)
	}
	return snapshot.Format(o.settings().Trace.Format)
}

// loadTrace reads and parses a trace file, mapping failures to exit codes.
func loadTrace(o *RootOptions, f *OutputFormatter, path string, tf TraceFlags) (*wm.Trace, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("trace file not found: %s", path), err)
	}
	trace, err := harness.LoadTrace(path, o.traceFormat(tf), tf.Mode, o.logger())
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			return nil, f.Fail(ExitCommandError, ErrCodeTraceParse, fmt.Sprintf("invalid trace %s", path), err)
		}
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to load trace %s", path), err)
	}
	f.VerboseLog("loaded %d entries from %s", trace.Len(), path)
	return trace, nil
}

// entryAt returns the entry at ts, mapping a miss to an exit error.
func entryAt(f *OutputFormatter, trace *wm.Trace, ts int64) (*wm.Entry, error) {
	e, err := trace.Entry(ts)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeEntryNotFound, fmt.Sprintf("no entry at timestamp %d", ts), err)
	}
	return e, nil
}
