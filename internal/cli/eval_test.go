package cli

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/primops/internal/ir"
	"github.com/roach88/primops/internal/ops"
)

func TestEvalValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"add", []string{"add", "2", "3"}, "5\n"},
		{"add wraps", []string{"add", "2147483647", "1"}, "-2147483648\n"},
		{"sub wraps", []string{"sub", "-2147483648", "1"}, "2147483647\n"},
		{"mul wraps", []string{"mul", "65536", "65536"}, "0\n"},
		{"div truncates", []string{"div", "-7", "2"}, "-3\n"},
		{"div overflow wraps", []string{"div", "-2147483648", "-1"}, "-2147483648\n"},
		{"lt", []string{"lt", "-1", "0"}, "1\n"},
		{"gte", []string{"gte", "-1", "0"}, "0\n"},
		{"and", []string{"and", "12", "10"}, "8\n"},
		{"or", []string{"or", "12", "10"}, "14\n"},
		{"shl sign bit", []string{"shl", "1", "31"}, "-2147483648\n"},
		{"shr arithmetic", []string{"shr", "-8", "1"}, "-4\n"},
		{"alias", []string{"shift-left", "3", "2"}, "12\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEvalDivideByZero(t *testing.T) {
	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), "div", "1", "0")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ DivideByZero")

	var domainErr *ops.DomainError
	assert.True(t, errors.As(err, &domainErr))
}

func TestEvalShiftOutOfRange(t *testing.T) {
	for _, rhs := range []string{"32", "-1"} {
		t.Run(rhs, func(t *testing.T) {
			out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), "shl", "1", rhs)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "✗ ShiftOutOfRange")
		})
	}
}

func TestEvalViolationJSON(t *testing.T) {
	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "json"}), "shr", "1", "40")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   EvalResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDomainViolation, resp.Error.Code)
	assert.Equal(t, ir.CaseShiftOutOfRange, resp.Data.OutputCase)
	assert.Nil(t, resp.Data.Value)
}

func TestEvalJSON(t *testing.T) {
	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "json"}), "mul", "-3", "4")
	require.NoError(t, err)

	var resp struct {
		Status  string     `json:"status"`
		Data    EvalResult `json:"data"`
		TraceID string     `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "mul", resp.Data.Op)
	assert.Equal(t, int32(-3), resp.Data.Lhs)
	assert.Equal(t, ir.CaseSuccess, resp.Data.OutputCase)
	require.NotNil(t, resp.Data.Value)
	assert.Equal(t, int32(-12), *resp.Data.Value)
	assert.Empty(t, resp.TraceID)
	assert.Empty(t, resp.Data.InvocationID)
}

func TestEvalUnknownOp(t *testing.T) {
	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), "mod", "7", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeUnknownOp)
	assert.Contains(t, out, `unknown operation "mod"`)
}

func TestEvalBadOperand(t *testing.T) {
	for _, raw := range []string{"2147483648", "-2147483649", "1.5", "x"} {
		t.Run(raw, func(t *testing.T) {
			out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), "add", raw, "1")
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, ErrCodeBadOperand)
		})
	}
}

func TestEvalWrongArgCount(t *testing.T) {
	_, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), "add", "1")
	require.Error(t, err)
}

func TestEvalRecordsToDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "primops.db")

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--flow", "flow-rec", "add", "1", "2")
	require.NoError(t, err)

	var first struct {
		Data    EvalResult `json:"data"`
		TraceID string     `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, "flow-rec", first.TraceID)
	assert.Equal(t, "flow-rec", first.Data.FlowToken)
	assert.NotEmpty(t, first.Data.InvocationID)
	assert.Equal(t, int64(1), first.Data.Seq)

	out, err = execute(t, NewEvalCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--flow", "flow-rec", "add", "1", "2")
	require.NoError(t, err)

	var second struct {
		Data EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Greater(t, second.Data.Seq, first.Data.Seq)
	assert.NotEqual(t, first.Data.InvocationID, second.Data.InvocationID)
}

func TestEvalGeneratesFlowToken(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "primops.db")

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "json"}), "--db", dbPath, "eq", "1", "1")
	require.NoError(t, err)

	var resp struct {
		Data EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data.FlowToken, 36)
}
