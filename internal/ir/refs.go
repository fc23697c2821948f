package ir

// OpRef is a typed reference to a catalog operation by its canonical name
// (e.g. "lt", "shl"). Aliases are resolved before an OpRef is recorded.
type OpRef string
