package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparisons_Literals(t *testing.T) {
	// Literal checks carried by the conformance program.
	assert.Equal(t, int32(1), Eq(1, 1))
	assert.Equal(t, int32(0), Eq(0, 1))
	assert.Equal(t, int32(0), Lt(1, 1))
	assert.Equal(t, int32(1), Lt(0, 2))
	assert.Equal(t, int32(0), Gt(1, 1))
	assert.Equal(t, int32(0), Gt(0, 2))
}

func TestComparisons_Table(t *testing.T) {
	tests := []struct {
		lhs, rhs                  int32
		eq, neq, lt, gt, lte, gte int32
	}{
		{0, 0, 1, 0, 0, 0, 1, 1},
		{-1, 1, 0, 1, 1, 0, 1, 0},
		{1, -1, 0, 1, 0, 1, 0, 1},
		{MinValue, MaxValue, 0, 1, 1, 0, 1, 0},
		{MaxValue, MinValue, 0, 1, 0, 1, 0, 1},
		{MinValue, MinValue, 1, 0, 0, 0, 1, 1},
		{MaxValue, MaxValue, 1, 0, 0, 0, 1, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.eq, Eq(tt.lhs, tt.rhs), "eq(%d, %d)", tt.lhs, tt.rhs)
		assert.Equal(t, tt.neq, Neq(tt.lhs, tt.rhs), "neq(%d, %d)", tt.lhs, tt.rhs)
		assert.Equal(t, tt.lt, Lt(tt.lhs, tt.rhs), "lt(%d, %d)", tt.lhs, tt.rhs)
		assert.Equal(t, tt.gt, Gt(tt.lhs, tt.rhs), "gt(%d, %d)", tt.lhs, tt.rhs)
		assert.Equal(t, tt.lte, Lte(tt.lhs, tt.rhs), "lte(%d, %d)", tt.lhs, tt.rhs)
		assert.Equal(t, tt.gte, Gte(tt.lhs, tt.rhs), "gte(%d, %d)", tt.lhs, tt.rhs)
	}
}

func TestArithmetic_Wraparound(t *testing.T) {
	tests := []struct {
		name string
		got  int32
		want int32
	}{
		{"add max+1", Add(MaxValue, 1), MinValue},
		{"add min+-1", Add(MinValue, -1), MaxValue},
		{"add max+max", Add(MaxValue, MaxValue), -2},
		{"sub min-1", Sub(MinValue, 1), MaxValue},
		{"sub max--1", Sub(MaxValue, -1), MinValue},
		{"sub 0-min", Sub(0, MinValue), MinValue},
		{"mul max*2", Mul(MaxValue, 2), -2},
		{"mul min*-1", Mul(MinValue, -1), MinValue},
		{"mul 2^16*2^16", Mul(1<<16, 1<<16), 0},
		{"mul -3*7", Mul(-3, 7), -21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestDiv_TruncatesTowardZero(t *testing.T) {
	tests := []struct {
		lhs, rhs, want int32
	}{
		{7, 2, 3},
		{-7, 2, -3},
		{7, -2, -3},
		{-7, -2, 3},
		{1, 2, 0},
		{-1, 2, 0},
		{0, 5, 0},
		{MaxValue, 1, MaxValue},
		{MinValue, 1, MinValue},
		{MinValue, 2, -1 << 30},
	}

	for _, tt := range tests {
		got, err := Div(tt.lhs, tt.rhs)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "div(%d, %d)", tt.lhs, tt.rhs)
	}
}

func TestDiv_MinByMinusOneWraps(t *testing.T) {
	got, err := Div(MinValue, -1)
	require.NoError(t, err)
	assert.Equal(t, MinValue, got)
}

func TestDiv_ByZeroFails(t *testing.T) {
	for _, lhs := range []int32{0, 1, -1, MinValue, MaxValue} {
		got, err := Div(lhs, 0)
		require.Error(t, err)
		assert.Zero(t, got)
		assert.True(t, IsDivideByZero(err))
		assert.False(t, IsShiftOutOfRange(err))

		var de *DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, ErrCodeDivideByZero, de.Code)
		assert.Equal(t, OpDiv, de.Op)
		assert.Equal(t, lhs, de.Lhs)
		assert.Equal(t, int32(0), de.Rhs)
	}
}

func TestBitwise(t *testing.T) {
	assert.Equal(t, int32(0x0F), And(0xFF, 0x0F))
	assert.Equal(t, int32(0xFF), Or(0xF0, 0x0F))
	assert.Equal(t, int32(0), And(0x0F, 0xF0))
	assert.Equal(t, int32(-1), Or(MinValue, MaxValue))
	assert.Equal(t, int32(0), And(MinValue, MaxValue))
	assert.Equal(t, MinValue+1, Or(MinValue, 1))
	assert.Equal(t, int32(12345), And(-1, 12345))
}

func TestShl(t *testing.T) {
	tests := []struct {
		lhs, count, want int32
	}{
		{1, 0, 1},
		{1, 1, 2},
		{1, 30, 1 << 30},
		{1, 31, MinValue},
		{3, 31, MinValue},
		{-1, 31, MinValue},
		{1 << 30, 1, MinValue},
		{-1, 4, -16},
		{MaxValue, 1, -2},
	}

	for _, tt := range tests {
		got, err := Shl(tt.lhs, tt.count)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "shl(%d, %d)", tt.lhs, tt.count)
	}
}

func TestShr_SignExtends(t *testing.T) {
	tests := []struct {
		lhs, count, want int32
	}{
		{8, 3, 1},
		{-8, 1, -4},
		{-1, 31, -1},
		{MinValue, 31, -1},
		{MaxValue, 30, 1},
		{MaxValue, 31, 0},
		{-7, 1, -4},
		{5, 0, 5},
	}

	for _, tt := range tests {
		got, err := Shr(tt.lhs, tt.count)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "shr(%d, %d)", tt.lhs, tt.count)
	}
}

func TestShift_CountOutOfRangeFails(t *testing.T) {
	counts := []int32{-1, Width, Width + 1, 64, MaxValue, MinValue}

	for _, count := range counts {
		_, err := Shl(1, count)
		require.Error(t, err, "shl(1, %d)", count)
		assert.True(t, IsShiftOutOfRange(err))

		_, err = Shr(1, count)
		require.Error(t, err, "shr(1, %d)", count)
		assert.True(t, IsShiftOutOfRange(err))

		var de *DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, OpShr, de.Op)
		assert.Equal(t, count, de.Rhs)
	}
}

func TestDomainError_Message(t *testing.T) {
	_, err := Div(1, 0)
	require.Error(t, err)
	assert.Equal(t, "DIVIDE_BY_ZERO: div(1, 0): division by zero", err.Error())

	_, err = Shl(1, 32)
	require.Error(t, err)
	assert.Equal(t, "SHIFT_OUT_OF_RANGE: shl(1, 32): shift count out of range", err.Error())
	assert.True(t, IsDomainError(err))
}

func TestReferentialTransparency(t *testing.T) {
	for _, op := range Catalog() {
		first, err1 := Apply(op, -7, 3)
		second, err2 := Apply(op, -7, 3)
		assert.Equal(t, first, second, "op %s", op)
		assert.Equal(t, err1 == nil, err2 == nil, "op %s", op)
	}
}
