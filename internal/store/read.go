package store

import (
	"context"
	"fmt"

	"github.com/roach88/primops/internal/ir"
)

const (
	invocationColumns = `id, flow_token, op, lhs, rhs, seq, engine_version, ir_version`
	completionColumns = `c.id, c.invocation_id, c.output_case, c.value, c.seq`
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInvocation(sc scanner) (ir.Invocation, error) {
	var inv ir.Invocation
	var op string
	if err := sc.Scan(
		&inv.ID, &inv.FlowToken, &op, &inv.Lhs, &inv.Rhs,
		&inv.Seq, &inv.EngineVersion, &inv.IRVersion,
	); err != nil {
		return ir.Invocation{}, err
	}
	inv.Op = ir.OpRef(op)
	return inv, nil
}

func scanCompletion(sc scanner) (ir.Completion, error) {
	var comp ir.Completion
	if err := sc.Scan(
		&comp.ID, &comp.InvocationID, &comp.OutputCase, &comp.Value, &comp.Seq,
	); err != nil {
		return ir.Completion{}, err
	}
	return comp, nil
}

// queryInvocations runs query and collects invocations.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) queryInvocations(ctx context.Context, query string, args ...any) ([]ir.Invocation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	invocations := []ir.Invocation{}
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		invocations = append(invocations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return invocations, nil
}

// queryCompletions runs query and collects completions.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) queryCompletions(ctx context.Context, query string, args ...any) ([]ir.Completion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	completions := []ir.Completion{}
	for rows.Next() {
		comp, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, comp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return completions, nil
}

// ReadFlow returns all invocations and completions for a flow token,
// each ordered by seq ASC, id COLLATE BINARY ASC.
func (s *Store) ReadFlow(ctx context.Context, flowToken string) ([]ir.Invocation, []ir.Completion, error) {
	invocations, err := s.readFlowInvocations(ctx, flowToken)
	if err != nil {
		return nil, nil, err
	}
	completions, err := s.readFlowCompletions(ctx, flowToken)
	if err != nil {
		return nil, nil, err
	}
	return invocations, completions, nil
}

func (s *Store) readFlowInvocations(ctx context.Context, flowToken string) ([]ir.Invocation, error) {
	return s.queryInvocations(ctx, `
		SELECT `+invocationColumns+`
		FROM invocations
		WHERE flow_token = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, flowToken)
}

func (s *Store) readFlowCompletions(ctx context.Context, flowToken string) ([]ir.Completion, error) {
	return s.queryCompletions(ctx, `
		SELECT `+completionColumns+`
		FROM completions c
		JOIN invocations i ON c.invocation_id = i.id
		WHERE i.flow_token = ?
		ORDER BY c.seq ASC, c.id COLLATE BINARY ASC
	`, flowToken)
}

// ReadInvocation retrieves a single invocation by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadInvocation(ctx context.Context, id string) (ir.Invocation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+invocationColumns+`
		FROM invocations
		WHERE id = ?
	`, id)
	return scanInvocation(row)
}

// ReadCompletion retrieves a single completion by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadCompletion(ctx context.Context, id string) (ir.Completion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+completionColumns+`
		FROM completions c
		WHERE c.id = ?
	`, id)
	return scanCompletion(row)
}

// ReadCompletionFor retrieves the completion of an invocation.
// Returns sql.ErrNoRows if the invocation has none.
func (s *Store) ReadCompletionFor(ctx context.Context, invocationID string) (ir.Completion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+completionColumns+`
		FROM completions c
		WHERE c.invocation_id = ?
	`, invocationID)
	return scanCompletion(row)
}

// ReadAllInvocations returns every invocation ordered by seq ASC, id ASC.
func (s *Store) ReadAllInvocations(ctx context.Context) ([]ir.Invocation, error) {
	return s.queryInvocations(ctx, `
		SELECT `+invocationColumns+`
		FROM invocations
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

// ReadAllCompletions returns every completion ordered by seq ASC, id ASC.
func (s *Store) ReadAllCompletions(ctx context.Context) ([]ir.Completion, error) {
	return s.queryCompletions(ctx, `
		SELECT `+completionColumns+`
		FROM completions c
		ORDER BY c.seq ASC, c.id COLLATE BINARY ASC
	`)
}

// CountOutcomes returns the number of completions per output case for a
// flow. An empty flow token counts across all flows.
func (s *Store) CountOutcomes(ctx context.Context, flowToken string) (map[string]int, error) {
	query := `
		SELECT c.output_case, COUNT(*)
		FROM completions c
		JOIN invocations i ON c.invocation_id = i.id
		WHERE (? = '' OR i.flow_token = ?)
		GROUP BY c.output_case
		ORDER BY c.output_case
	`
	rows, err := s.db.QueryContext(ctx, query, flowToken, flowToken)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outputCase string
		var n int
		if err := rows.Scan(&outputCase, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[outputCase] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome counts: %w", err)
	}
	return counts, nil
}
