// Package laws encodes the algebraic properties of the operation catalog
// as executable checks and sweeps them over operand grids.
//
// A sweep evaluates every law on every tuple of a boundary grid (or on a
// seeded random sample), one law per worker. Any violation means the
// catalog disagrees with its own contract.
package laws
