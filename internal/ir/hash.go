package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainInvocation = "primops/invocation/v1"
	DomainCompletion = "primops/completion/v1"
	DomainSuite      = "primops/suite/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as hex.
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InvocationID computes the content-addressed ID of an invocation.
// The ID is stable across restarts and replays given the same inputs.
func InvocationID(flowToken string, op OpRef, lhs, rhs int32, seq int64) (string, error) {
	obj := IRObject{
		"flow_token": IRString(flowToken),
		"op":         IRString(op),
		"args":       IRObject{"lhs": IRInt(lhs), "rhs": IRInt(rhs)},
		"seq":        IRInt(seq),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("InvocationID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainInvocation, canonical), nil
}

// CompletionID computes the content-addressed ID of a completion.
// The value is only hashed for successful completions.
func CompletionID(invocationID, outputCase string, value int32, seq int64) (string, error) {
	c := Completion{InvocationID: invocationID, OutputCase: outputCase, Value: value}
	obj := IRObject{
		"invocation_id": IRString(invocationID),
		"output_case":   IRString(outputCase),
		"result":        c.Result(),
		"seq":           IRInt(seq),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CompletionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCompletion, canonical), nil
}

// SuiteObject returns the canonical form of a compiled suite. Source line
// numbers are not part of it.
func SuiteObject(suite SuiteSpec) IRObject {
	cases := make(IRArray, len(suite.Cases))
	for i, c := range suite.Cases {
		obj := IRObject{
			"op":  IRString(c.Op),
			"lhs": IRInt(c.Lhs),
			"rhs": IRInt(c.Rhs),
		}
		if c.Want != nil {
			obj["want"] = IRInt(*c.Want)
		}
		if c.Fails != "" {
			obj["fails"] = IRString(c.Fails)
		}
		cases[i] = obj
	}
	return IRObject{
		"name":        IRString(suite.Name),
		"description": IRString(suite.Description),
		"flow_token":  IRString(suite.FlowToken),
		"cases":       cases,
	}
}

// SuiteHash computes a content hash over a compiled suite.
func SuiteHash(suite SuiteSpec) (string, error) {
	canonical, err := MarshalCanonical(SuiteObject(suite))
	if err != nil {
		return "", fmt.Errorf("SuiteHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSuite, canonical), nil
}

// MustInvocationID is like InvocationID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustInvocationID(flowToken string, op OpRef, lhs, rhs int32, seq int64) string {
	id, err := InvocationID(flowToken, op, lhs, rhs, seq)
	if err != nil {
		panic(err)
	}
	return id
}

// MustCompletionID is like CompletionID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCompletionID(invocationID, outputCase string, value int32, seq int64) string {
	id, err := CompletionID(invocationID, outputCase, value, seq)
	if err != nil {
		panic(err)
	}
	return id
}
