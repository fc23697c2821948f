package testutil

// Int32 returns a pointer to v, for optional operands and expected values
// in scenario literals.
func Int32(v int32) *int32 {
	return &v
}
