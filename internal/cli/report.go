package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// RunReport is the detail view of one stored run.
type RunReport struct {
	Run    store.Run           `json:"run"`
	Checks []store.CheckRecord `json:"checks"`
	Errors []store.ErrorRecord `json:"errors"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show recorded scenario runs",
		Long: `List the runs recorded by "wmtrace test --db", or show the checks
and assertion errors of one run.

Examples:
  wmtrace report --db runs.db
  wmtrace report --db runs.db --run 0192e4f5-...
  wmtrace report --db runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default store.path)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one run")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.settings().Store.Path
	}
	if dbPath == "" {
		return f.Fail(ExitCommandError, ErrCodeStore, "no database: pass --db or set store.path", nil)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
		}
		if f.IsJSON() {
			return f.Success(runs)
		}
		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(w, "%4d %s %-6s %s\n", r.Seq, r.ID, passLabel(r.Passed), r.Scenario)
		}
		return nil
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), err)
		}
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}
	checks, err := st.ReadCheckResults(ctx, run.ID)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read checks", err)
	}
	errs, err := st.ReadErrors(ctx, run.ID)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read assertion errors", err)
	}

	report := RunReport{Run: run, Checks: checks, Errors: errs}
	if f.IsJSON() {
		return f.Success(report)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (#%d) %s: %s\n", run.ID, run.Seq, run.Scenario, passLabel(run.Passed))
	fmt.Fprintf(w, "Trace %s digest %s\n", run.TracePath, run.TraceDigest)
	for _, c := range checks {
		mark := "✓"
		if !c.OK {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s [%d] %s(%s) at %d expect=%s: %s\n", mark, c.Index, c.Assertion, c.Target, c.Timestamp, c.Expect, c.Message)
	}
	if len(errs) > 0 {
		fmt.Fprintln(w, "Assertion errors:")
		for _, e := range errs {
			fmt.Fprintf(w, "  %s\n", e.Error)
		}
	}
	return nil
}

func passLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
