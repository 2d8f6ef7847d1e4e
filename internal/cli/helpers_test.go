package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/snapshot"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/testutil"
)

// execute runs the root command with args and an empty config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// writeReferenceTrace writes testutil.ReferenceTrace to dir/name.
func writeReferenceTrace(t *testing.T, dir, name string, format snapshot.Format) string {
	t.Helper()
	enc, err := snapshot.EncoderFor(format)
	require.NoError(t, err)
	data, err := enc.Encode(testutil.ReferenceTrace())
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
