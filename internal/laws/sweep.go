package laws

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxViolations caps the violations kept per law.
const DefaultMaxViolations = 10

// DefaultGrid returns the boundary operands swept by default: the int32
// extremes, small values around zero, and shift counts around the width.
func DefaultGrid() []int32 {
	return []int32{
		math.MinInt32, math.MinInt32 + 1,
		-65536, -33, -32, -31, -7, -2, -1,
		0, 1, 2, 7, 31, 32, 33, 65536,
		math.MaxInt32 - 1, math.MaxInt32,
	}
}

// Violation is one operand tuple for which a law does not hold.
type Violation struct {
	Law      string  `json:"law"`
	Operands []int32 `json:"operands"`
	Message  string  `json:"message"`
}

// LawResult summarizes the sweep of one law.
type LawResult struct {
	Name       string      `json:"name"`
	Checked    int         `json:"checked"`
	Violations []Violation `json:"violations,omitempty"`
}

// Report is the outcome of a sweep. Laws keep the order they were given in.
type Report struct {
	Laws []LawResult `json:"laws"`
}

// OK reports whether every law held.
func (r Report) OK() bool {
	for _, l := range r.Laws {
		if len(l.Violations) > 0 {
			return false
		}
	}
	return true
}

// Checked returns the total number of law evaluations.
func (r Report) Checked() int {
	n := 0
	for _, l := range r.Laws {
		n += l.Checked
	}
	return n
}

// Options configures a sweep.
type Options struct {
	// Workers bounds concurrent laws. Zero means GOMAXPROCS.
	Workers int

	// MaxViolations caps recorded violations per law. Zero means
	// DefaultMaxViolations.
	MaxViolations int

	// Logger receives per-law progress. Nil discards.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MaxViolations <= 0 {
		o.MaxViolations = DefaultMaxViolations
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Inputs yields operand tuples for a law of the given arity.
type Inputs func(arity int) iter.Seq[[3]int32]

// Grid returns Inputs covering every arity-tuple of values.
func Grid(values []int32) Inputs {
	return func(arity int) iter.Seq[[3]int32] {
		return func(yield func([3]int32) bool) {
			var t [3]int32
			var walk func(pos int) bool
			walk = func(pos int) bool {
				if pos == arity {
					return yield(t)
				}
				for _, v := range values {
					t[pos] = v
					if !walk(pos + 1) {
						return false
					}
				}
				return true
			}
			walk(0)
		}
	}
}

// Sample returns Inputs of n pseudo-random tuples derived from seed. Half
// of the operands are drawn from the boundary grid so edges stay covered.
// Every law sees the same tuples.
func Sample(n int, seed uint64) Inputs {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	grid := DefaultGrid()
	tuples := make([][3]int32, n)
	for i := range tuples {
		for j := range tuples[i] {
			if rng.IntN(2) == 0 {
				tuples[i][j] = grid[rng.IntN(len(grid))]
			} else {
				tuples[i][j] = int32(rng.Uint32())
			}
		}
	}
	return func(int) iter.Seq[[3]int32] {
		return slices.Values(tuples)
	}
}

// Sweep evaluates each law on every tuple produced by inputs, running up
// to opts.Workers laws at once. It stops early only when ctx is canceled.
func Sweep(ctx context.Context, laws []Law, inputs Inputs, opts Options) (Report, error) {
	opts = opts.withDefaults()
	results := make([]LawResult, len(laws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, law := range laws {
		g.Go(func() error {
			r, err := checkLaw(gctx, law, inputs, opts.MaxViolations)
			if err != nil {
				return fmt.Errorf("law %s: %w", law.Name, err)
			}
			opts.Logger.Debug("law checked",
				"law", law.Name,
				"checked", r.Checked,
				"violations", len(r.Violations),
			)
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return Report{Laws: results}, nil
}

// checkLaw evaluates one law. ctx is polled every 1024 tuples.
func checkLaw(ctx context.Context, law Law, inputs Inputs, maxViolations int) (LawResult, error) {
	result := LawResult{Name: law.Name}
	for t := range inputs(law.Arity) {
		if result.Checked%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}
		result.Checked++

		err := law.Check(t[0], t[1], t[2])
		if err == nil || len(result.Violations) >= maxViolations {
			continue
		}
		result.Violations = append(result.Violations, Violation{
			Law:      law.Name,
			Operands: slices.Clone(t[:law.Arity]),
			Message:  err.Error(),
		})
	}
	return result, nil
}
