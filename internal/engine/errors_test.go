package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeError_Error(t *testing.T) {
	err := NewUnknownOperationError("flow-1", "pow")
	assert.Equal(t, `UNKNOWN_OPERATION: unknown operation "pow" (flow=flow-1)`, err.Error())

	cause := errors.New("disk full")
	storeErr := NewStoreError("", "record call", cause)
	assert.Equal(t, "STORE_FAILURE: record call: disk full", storeErr.Error())
	assert.ErrorIs(t, storeErr, cause)
}

func TestRuntimeError_Helpers(t *testing.T) {
	wrapped := fmt.Errorf("eval: %w", NewUnknownOperationError("", "pow"))

	assert.True(t, IsUnknownOperation(wrapped))
	assert.False(t, IsStoreFailure(wrapped))
	assert.False(t, IsOperandOutOfRange(errors.New("plain")))
	assert.True(t, IsStoreFailure(NewStoreError("", "x", nil)))
}

func TestParseOperand(t *testing.T) {
	tests := []struct {
		raw     string
		want    int32
		wantErr bool
	}{
		{"0", 0, false},
		{"-7", -7, false},
		{"2147483647", 2147483647, false},
		{"-2147483648", -2147483648, false},
		{"2147483648", 0, true},
		{"-2147483649", 0, true},
		{"1.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseOperand("lhs", tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsOperandOutOfRange(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
