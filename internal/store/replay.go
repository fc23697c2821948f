package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/roach88/primops/internal/ir"
)

// FlowState summarizes a recorded flow.
type FlowState struct {
	FlowToken      string
	Invocations    []ir.Invocation
	Completions    []ir.Completion
	LastSeq        int64
	PendingCount   int            // Invocations without completions
	Outcomes       map[string]int // Completions per output case
	IsComplete     bool           // Non-empty and no pending invocations
	TerminalStatus string         // Output case of the last completion
}

// GetFlowState retrieves all records of a flow with a completeness summary.
func (s *Store) GetFlowState(ctx context.Context, flowToken string) (FlowState, error) {
	state := FlowState{
		FlowToken: flowToken,
		Outcomes:  make(map[string]int),
	}

	invocations, completions, err := s.ReadFlow(ctx, flowToken)
	if err != nil {
		return state, fmt.Errorf("get flow state: %w", err)
	}
	state.Invocations = invocations
	state.Completions = completions

	completed := make(map[string]bool, len(completions))
	for _, comp := range completions {
		completed[comp.InvocationID] = true
		state.Outcomes[comp.OutputCase]++
		state.LastSeq = max(state.LastSeq, comp.Seq)
	}
	for _, inv := range invocations {
		state.LastSeq = max(state.LastSeq, inv.Seq)
		if !completed[inv.ID] {
			state.PendingCount++
		}
	}

	state.IsComplete = state.PendingCount == 0 && len(invocations) > 0
	if len(completions) > 0 {
		state.TerminalStatus = completions[len(completions)-1].OutputCase
	}
	return state, nil
}

// FindIncompleteFlows returns flows holding invocations without completions.
// WriteCall prevents this; it can only follow WriteInvocation without a
// matching WriteCompletion.
func (s *Store) FindIncompleteFlows(ctx context.Context) ([]FlowState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT i.flow_token
		FROM invocations i
		LEFT JOIN completions c ON i.id = c.invocation_id
		WHERE c.id IS NULL
		ORDER BY i.flow_token
	`)
	if err != nil {
		return nil, fmt.Errorf("find incomplete flows: %w", err)
	}
	defer rows.Close()

	var flowTokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan flow token: %w", err)
		}
		flowTokens = append(flowTokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flow tokens: %w", err)
	}

	states := []FlowState{}
	for _, token := range flowTokens {
		state, err := s.GetFlowState(ctx, token)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// GetPendingInvocations returns a flow's invocations that have no completion,
// ordered by seq ASC, id ASC.
func (s *Store) GetPendingInvocations(ctx context.Context, flowToken string) ([]ir.Invocation, error) {
	invocations, err := s.queryInvocations(ctx, `
		SELECT i.id, i.flow_token, i.op, i.lhs, i.rhs, i.seq, i.engine_version, i.ir_version
		FROM invocations i
		LEFT JOIN completions c ON i.id = c.invocation_id
		WHERE i.flow_token = ? AND c.id IS NULL
		ORDER BY i.seq ASC, i.id COLLATE BINARY ASC
	`, flowToken)
	if err != nil {
		return nil, fmt.Errorf("get pending invocations: %w", err)
	}
	return invocations, nil
}

// FlowEvent is a single event in a flow (invocation or completion).
type FlowEvent struct {
	Type       FlowEventType
	Seq        int64
	ID         string
	Invocation *ir.Invocation
	Completion *ir.Completion
}

// FlowEventType distinguishes between invocations and completions.
type FlowEventType int

const (
	EventInvocation FlowEventType = iota
	EventCompletion
)

// String returns the event type as a string.
func (t FlowEventType) String() string {
	switch t {
	case EventInvocation:
		return "invocation"
	case EventCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// ReplayFlow returns a flow's invocations and completions merged into one
// stream ordered by seq, invocations first on ties, then by ID.
func (s *Store) ReplayFlow(ctx context.Context, flowToken string) ([]FlowEvent, error) {
	invocations, completions, err := s.ReadFlow(ctx, flowToken)
	if err != nil {
		return nil, fmt.Errorf("replay flow: %w", err)
	}

	events := make([]FlowEvent, 0, len(invocations)+len(completions))
	for i := range invocations {
		inv := &invocations[i]
		events = append(events, FlowEvent{Type: EventInvocation, Seq: inv.Seq, ID: inv.ID, Invocation: inv})
	}
	for i := range completions {
		comp := &completions[i]
		events = append(events, FlowEvent{Type: EventCompletion, Seq: comp.Seq, ID: comp.ID, Completion: comp})
	}

	slices.SortStableFunc(events, func(a, b FlowEvent) int {
		return cmp.Or(
			cmp.Compare(a.Seq, b.Seq),
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return events, nil
}

// GetLastSeq returns the highest seq in the store, or 0 when empty.
// Used to resume the logical clock when appending to an existing log.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			(SELECT COALESCE(MAX(seq), 0) FROM invocations),
			(SELECT COALESCE(MAX(seq), 0) FROM completions)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// GetLastSeqForFlow returns the highest seq used in one flow.
func (s *Store) GetLastSeqForFlow(ctx context.Context, flowToken string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			(SELECT COALESCE(MAX(seq), 0) FROM invocations WHERE flow_token = ?),
			(SELECT COALESCE(MAX(c.seq), 0)
			 FROM completions c
			 JOIN invocations i ON c.invocation_id = i.id
			 WHERE i.flow_token = ?)
		)
	`, flowToken, flowToken).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq for flow: %w", err)
	}
	return seq, nil
}

// ListFlowTokens returns all distinct flow tokens, alphabetically.
func (s *Store) ListFlowTokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT flow_token FROM invocations
		ORDER BY flow_token
	`)
	if err != nil {
		return nil, fmt.Errorf("list flow tokens: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan flow token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flow tokens: %w", err)
	}
	return tokens, nil
}
