package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/primops/internal/ir"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestInvocation builds an invocation with minimal required fields.
func createTestInvocation(id, flowToken, op string, lhs, rhs int32, seq int64) ir.Invocation {
	return ir.Invocation{
		ID:            id,
		FlowToken:     flowToken,
		Op:            ir.OpRef(op),
		Lhs:           lhs,
		Rhs:           rhs,
		Seq:           seq,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

// createTestCompletion builds a completion with minimal required fields.
func createTestCompletion(id, invocationID, outputCase string, value int32, seq int64) ir.Completion {
	return ir.Completion{
		ID:           id,
		InvocationID: invocationID,
		OutputCase:   outputCase,
		Value:        value,
		Seq:          seq,
	}
}
