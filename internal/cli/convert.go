package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/parser"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/snapshot"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	From string
	To   string
}

// ConvertResult is the output of the convert command.
type ConvertResult struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	From      string `json:"from"`
	To        string `json:"to"`
	Snapshots int    `json:"snapshots"`
	Bytes     int    `json:"bytes"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Re-encode a trace",
		Long: `Re-encode a trace between the YAML and binary formats.

The input is validated as a trace before anything is written. The output
format comes from --to, or from the output file extension (.yaml/.yml for
YAML, anything else for binary).

Examples:
  wmtrace convert trace.yaml trace.winscope
  wmtrace convert trace.winscope trace.yaml
  wmtrace convert capture.bin out.dat --to yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "input format (auto|yaml|proto), default from config")
	cmd.Flags().StringVar(&opts.To, "to", "", "output format (yaml|proto), default from output extension")

	return cmd
}

func runConvert(opts *ConvertOptions, in, out string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	data, err := os.ReadFile(in)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("failed to read %s", in), err)
	}

	from := snapshot.Format(opts.From)
	if from == "" {
		from = snapshot.Format(opts.settings().Trace.Format)
	}
	if from == "" || from == snapshot.FormatAuto {
		from = snapshot.DetectFormat(in, data)
	}
	dec, err := snapshot.ForFormat(from)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid input format", err)
	}

	to := snapshot.Format(opts.To)
	if to == "" {
		to = snapshot.DetectFormat(out, nil)
	}
	enc, err := snapshot.EncoderFor(to)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid output format", err)
	}

	snaps, err := dec.Decode(data)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeTraceParse, fmt.Sprintf("invalid trace %s", in), err)
	}
	if _, err := parser.New(opts.logger()).ParseSnapshots(snaps); err != nil {
		return f.Fail(ExitCommandError, ErrCodeTraceParse, fmt.Sprintf("invalid trace %s", in), err)
	}

	encoded, err := enc.Encode(snaps)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to encode trace", err)
	}
	if err := os.WriteFile(out, encoded, 0o644); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", out), err)
	}

	result := ConvertResult{
		Input:     in,
		Output:    out,
		From:      string(from),
		To:        string(to),
		Snapshots: len(snaps),
		Bytes:     len(encoded),
	}
	if f.IsJSON() {
		return f.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d snapshots (%s → %s): %s\n", result.Snapshots, result.From, result.To, out)
	return nil
}
