package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/assertion"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/ir"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/parser"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/snapshot"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/wm"
)

// Run loads the scenario's trace and evaluates its checks in order.
//
// An error is returned only when the trace cannot be read or parsed, or ctx
// is cancelled. Failed checks are reported through the Result.
func Run(ctx context.Context, s *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("scenario", s.Name)

	path := s.TracePath()
	trace, err := LoadTrace(path, snapshot.Format(s.Format), s.Mode, logger)
	if err != nil {
		return nil, err
	}

	result := NewResult(s.Name)
	result.TracePath = path
	result.TraceDigest, err = TraceDigest(trace)
	if err != nil {
		return nil, err
	}

	collector := assertion.NewCollector()
	for i, c := range s.Checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, res, err := evaluateCheck(trace, i, c)
		if res != nil {
			collector.Add(*res)
		}
		result.Checks = append(result.Checks, out)

		switch {
		case err != nil:
			result.AddError(err.Error())
			logger.Warn("check not evaluated", "check", i, "at", c.At, "error", err)
		case !out.OK:
			result.AddError(describeMismatch(c, out))
			logger.Info("check failed", "check", i, "assert", c.Assert, "window", c.Window, "passed", out.Passed)
		default:
			logger.Debug("check ok", "check", i, "assert", c.Assert, "window", c.Window)
		}
	}
	result.Failures = collector.Errors()
	return result, nil
}

// LoadTrace reads and parses a trace file. format may be empty or "auto" to
// detect it; mode is "trace" (default) or "dump".
func LoadTrace(path string, format snapshot.Format, mode string, logger *slog.Logger) (*wm.Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}
	dec, err := snapshot.Resolve(format, path, data)
	if err != nil {
		return nil, err
	}

	p := parser.New(logger)
	switch mode {
	case "", ModeTrace:
		return p.ParseFromTrace(data, dec)
	case ModeDump:
		return p.ParseFromDump(data, dec)
	default:
		return nil, fmt.Errorf("unknown mode %q (valid: trace, dump)", mode)
	}
}

// TraceDigest hashes the canonical dumps of every entry in order.
func TraceDigest(t *wm.Trace) (string, error) {
	dumps := make([]any, 0, t.Len())
	for _, e := range t.Entries() {
		dumps = append(dumps, e.Dump())
	}
	return ir.Digest(ir.DomainTrace, dumps)
}
