package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/assertion"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	TraceFlags
	At     int64
	Region string
	Below  string
	State  string
	Match  string
}

// CheckResult is the output of the check command.
type CheckResult struct {
	Timestamp int64            `json:"timestamp"`
	Result    assertion.Result `json:"result"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <trace> <assertion> <window>",
		Short: "Evaluate one assertion against one entry",
		Long: `Evaluate one assertion against the entry at --at.

Assertions:
  is_above_app_window, has_non_app_window, is_app_window_visible,
  is_visible_app_window_on_top, covers_at_least_region (--region),
  covers_at_most_region (--region), is_window_above (--below),
  has_activity_state (--state), is_focused_window

Exit codes:
  0 - Assertion passed
  1 - Assertion failed
  2 - Command error (invalid arguments, unreadable trace, etc.)

Examples:
  wmtrace check trace.yaml --at 9213763541297 is_above_app_window StatusBar
  wmtrace check trace.yaml --at 9213763541297 covers_at_least_region StatusBar --region 0,0,1440,171
  wmtrace check trace.yaml --at 9216093628925 is_window_above InputMethod --below Chrome`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], args[1], args[2], cmd)
		},
	}
	addTraceFlags(cmd, &opts.TraceFlags)
	cmd.Flags().Int64Var(&opts.At, "at", 0, "entry timestamp (required)")
	_ = cmd.MarkFlagRequired("at")
	cmd.Flags().StringVar(&opts.Region, "region", "", `region as "l,t,r,b", "(l,t,r,b)(l,t,r,b)" or "SkRegion(...)"`)
	cmd.Flags().StringVar(&opts.Below, "below", "", "window expected below <window> (is_window_above)")
	cmd.Flags().StringVar(&opts.State, "state", "", "expected activity state (has_activity_state)")
	cmd.Flags().StringVar(&opts.Match, "match", "", "title matching: default, exact or substring")

	return cmd
}

func runCheck(opts *CheckOptions, path, assertName, window string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	check, err := opts.buildCheck(assertName, window)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid check", err)
	}

	trace, err := loadTrace(opts.RootOptions, f, path, opts.TraceFlags)
	if err != nil {
		return err
	}
	entry, err := entryAt(f, trace, opts.At)
	if err != nil {
		return err
	}

	res, err := assertion.Evaluate(entry, check)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid check", err)
	}
	opts.logger().Debug("check evaluated", "assert", assertName, "window", window, "at", opts.At, "passed", res.Passed)

	if f.IsJSON() {
		if err := f.Success(CheckResult{Timestamp: opts.At, Result: res}); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%s %s(%s) at %d: %s\n", status, res.Name, res.Target, opts.At, res.Message)
		if res.Error != nil {
			fmt.Fprintf(w, "  at: %s\n", res.Error.Stacktrace)
			if f.Verbose {
				fmt.Fprintf(w, "  layer=%d token=%s task=%d\n", res.Error.LayerID, res.Error.WindowToken, res.Error.TaskID)
			}
		}
	}

	if !res.Passed {
		return NewExitError(ExitFailure, fmt.Sprintf("%s failed", assertName))
	}
	return nil
}

func (opts *CheckOptions) buildCheck(assertName, window string) (assertion.Check, error) {
	m, err := assertion.ParseMatch(opts.Match)
	if err != nil {
		return assertion.Check{}, err
	}
	var r region.Region
	if opts.Region != "" {
		r, err = region.Parse(opts.Region)
		if err != nil {
			return assertion.Check{}, err
		}
	}
	return assertion.Check{
		Assert: assertName,
		Window: window,
		Region: r,
		Below:  opts.Below,
		State:  opts.State,
		Match:  m,
	}, nil
}
