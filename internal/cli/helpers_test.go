package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const passingScenario = `name: arithmetic_smoke
flow_token: "flow-smoke"
flow:
  - invoke: add
    args: { lhs: 2147483647, rhs: 1 }
    expect: { value: -2147483648 }
  - invoke: div
    args: { lhs: -2147483648, rhs: -1 }
    expect: { value: -2147483648 }
  - invoke: div
    args: { lhs: 1, rhs: 0 }
    expect: { case: DivideByZero }
`

const failingScenario = `name: wrong_sum
flow_token: "flow-wrong"
flow:
  - invoke: add
    args: { lhs: 1, rhs: 1 }
    expect: { value: 3 }
  - invoke: sub
    args: { lhs: 1, rhs: 1 }
    expect: { value: 0 }
`

const shiftSuite = `suite: shifts: {
	flow_token: "flow-shifts"
	cases: [
		{op: "shl", lhs: 1, rhs: 31, want: -2147483648},
		{op: "shr", lhs: -8, rhs: 1, want: -4},
		{op: "shl", lhs: 1, rhs: 32, fails: "ShiftOutOfRange"},
	]
}
`

// scenarioDir creates a directory holding the given files.
func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		writeFile(t, dir, name, content)
	}
	return dir
}

// runWithStderr executes cmd and returns stdout and stderr. The command
// must succeed.
func runWithStderr(t *testing.T, cmd *cobra.Command, args ...string) (string, string) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return stdout.String(), stderr.String()
}
