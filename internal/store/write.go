package store

import (
	"context"
	"fmt"

	"github.com/roach88/primops/internal/ir"
)

const insertInvocationSQL = `
	INSERT INTO invocations
	(id, flow_token, op, lhs, rhs, seq, engine_version, ir_version)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
`

// ON CONFLICT DO NOTHING covers both a repeated completion ID and a second
// completion for the same invocation.
const insertCompletionSQL = `
	INSERT INTO completions
	(id, invocation_id, output_case, value, seq)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT DO NOTHING
`

// WriteInvocation inserts an invocation record.
// Duplicate IDs are silently ignored.
func (s *Store) WriteInvocation(ctx context.Context, inv ir.Invocation) error {
	_, err := s.db.ExecContext(ctx, insertInvocationSQL,
		inv.ID, inv.FlowToken, string(inv.Op), inv.Lhs, inv.Rhs,
		inv.Seq, inv.EngineVersion, inv.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}
	return nil
}

// WriteCompletion inserts a completion record.
// Each invocation has at most one completion; later writes are ignored.
// The referenced invocation must exist (foreign key constraint).
func (s *Store) WriteCompletion(ctx context.Context, comp ir.Completion) error {
	_, err := s.db.ExecContext(ctx, insertCompletionSQL,
		comp.ID, comp.InvocationID, comp.OutputCase, completionValue(comp), comp.Seq,
	)
	if err != nil {
		return fmt.Errorf("write completion: %w", err)
	}
	return nil
}

// WriteCall writes an invocation and its completion in one transaction,
// so a crash never leaves a recorded call without its outcome.
func (s *Store) WriteCall(ctx context.Context, inv ir.Invocation, comp ir.Completion) error {
	if comp.InvocationID != inv.ID {
		return fmt.Errorf("write call: completion %s belongs to %s, not %s", comp.ID, comp.InvocationID, inv.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write call: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertInvocationSQL,
		inv.ID, inv.FlowToken, string(inv.Op), inv.Lhs, inv.Rhs,
		inv.Seq, inv.EngineVersion, inv.IRVersion,
	); err != nil {
		return fmt.Errorf("write call: invocation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, insertCompletionSQL,
		comp.ID, comp.InvocationID, comp.OutputCase, completionValue(comp), comp.Seq,
	); err != nil {
		return fmt.Errorf("write call: completion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write call: commit: %w", err)
	}
	return nil
}

// completionValue stores 0 for failures so the column never carries a stale
// value.
func completionValue(comp ir.Completion) int32 {
	if !comp.Succeeded() {
		return 0
	}
	return comp.Value
}
