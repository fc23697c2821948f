package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationIDDeterminism(t *testing.T) {
	id1, err := InvocationID("flow-123", "lt", 0, 2, 1)
	require.NoError(t, err)

	id2, err := InvocationID("flow-123", "lt", 0, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "InvocationID must be deterministic")
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestInvocationIDChangesWithInput(t *testing.T) {
	base := MustInvocationID("flow-1", "add", 1, 2, 1)

	tests := []struct {
		name string
		id   string
	}{
		{"flow token", MustInvocationID("flow-2", "add", 1, 2, 1)},
		{"op", MustInvocationID("flow-1", "sub", 1, 2, 1)},
		{"lhs", MustInvocationID("flow-1", "add", 2, 2, 1)},
		{"rhs", MustInvocationID("flow-1", "add", 1, 3, 1)},
		{"seq", MustInvocationID("flow-1", "add", 1, 2, 2)},
		{"swapped operands", MustInvocationID("flow-1", "add", 2, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.id)
		})
	}
}

func TestCompletionIDDeterminism(t *testing.T) {
	invID := MustInvocationID("flow-1", "mul", 3, 4, 1)

	id1, err := CompletionID(invID, CaseSuccess, 12, 2)
	require.NoError(t, err)

	id2, err := CompletionID(invID, CaseSuccess, 12, 2)
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "CompletionID must be deterministic")
	assert.Len(t, id1, 64)
	assert.NotEqual(t, invID, id1, "Completion ID differs from Invocation ID")
}

func TestCompletionIDChangesWithOutput(t *testing.T) {
	invID := "inv-123"

	id1 := MustCompletionID(invID, CaseSuccess, 1, 1)
	id2 := MustCompletionID(invID, CaseDivideByZero, 0, 1)
	id3 := MustCompletionID(invID, CaseSuccess, 1, 2)
	id4 := MustCompletionID(invID, CaseSuccess, 0, 1)

	assert.NotEqual(t, id1, id2, "Different output case should produce different IDs")
	assert.NotEqual(t, id1, id3, "Different seq should produce different IDs")
	assert.NotEqual(t, id1, id4, "Different value should produce different IDs")
}

func TestCompletionIDIgnoresValueOnFailure(t *testing.T) {
	id1 := MustCompletionID("inv", CaseShiftOutOfRange, 0, 1)
	id2 := MustCompletionID("inv", CaseShiftOutOfRange, 99, 1)

	assert.Equal(t, id1, id2, "Failure completions carry no value")
}

func TestSuiteHash(t *testing.T) {
	want := int32(2)
	suite := SuiteSpec{
		Name: "shifts",
		Cases: []CaseSpec{
			{Op: "shl", Lhs: 1, Rhs: 1, Want: &want, Line: 3},
			{Op: "shl", Lhs: 1, Rhs: 32, Fails: CaseShiftOutOfRange},
		},
	}

	h1, err := SuiteHash(suite)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	suite.Cases[0].Line = 40
	h2, err := SuiteHash(suite)
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "line numbers are not hashed")

	suite.Cases[1].Rhs = 33
	h3, err := SuiteHash(suite)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestDomainSeparationPreventsCrossTypeCollision(t *testing.T) {
	data := []byte(`{"id":"test","data":42}`)

	invHash := hashWithDomain(DomainInvocation, data)
	compHash := hashWithDomain(DomainCompletion, data)
	suiteHash := hashWithDomain(DomainSuite, data)

	assert.NotEqual(t, invHash, compHash)
	assert.NotEqual(t, invHash, suiteHash)
	assert.NotEqual(t, compHash, suiteHash)
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	// "foo" + 0x00 + "bar" differs from "foob" + 0x00 + "ar"
	hash1 := hashWithDomain("foo", []byte("bar"))
	hash2 := hashWithDomain("foob", []byte("ar"))

	assert.NotEqual(t, hash1, hash2, "Null separator must prevent boundary confusion")
}

func TestDomainConstants(t *testing.T) {
	assert.Equal(t, "primops/invocation/v1", DomainInvocation)
	assert.Equal(t, "primops/completion/v1", DomainCompletion)
	assert.Equal(t, "primops/suite/v1", DomainSuite)
}

func TestHashHexEncoding(t *testing.T) {
	id := MustInvocationID("flow", "eq", -1, -2147483648, 1)

	for _, c := range id {
		valid := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		assert.True(t, valid, "Hash should only contain hex characters, got: %c", c)
	}
}
