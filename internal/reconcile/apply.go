package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"rostersync/internal/store"
)

// Operation is one applied (or attempted) write, kept for the report sample.
type Operation struct {
	Type    string        `json:"type"` // insert, update, delete
	Name    string        `json:"name"`
	Row     int           `json:"row,omitempty"`
	Changes []FieldChange `json:"changes,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Outcome aggregates what Apply actually did.
type Outcome struct {
	Inserted int
	Updated  int
	Skipped  int
	Deleted  int
	Failed   int
	// Operations records every write attempt in order.
	Operations []Operation
	// Mismatches flattens the field-level changes of applied updates.
	Mismatches []Mismatch
}

// Mismatch is one field difference on a named member.
type Mismatch struct {
	Name  string `json:"name"`
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// HashPassword derives the bcrypt hash shared by all inserts of one run.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash default password: %w", err)
	}
	return string(h), nil
}

// Apply executes a plan sequentially, best effort: a failed insert or
// update is logged and counted, never fatal. Deletes run their cascade in
// one transaction each; a failed cascade rolls back that member only.
func Apply(ctx context.Context, st *store.Store, plan Plan, log *zap.Logger, dryRun bool) Outcome {
	out := Outcome{Skipped: plan.Skipped}

	for _, up := range plan.Updates {
		op := Operation{Type: "update", Name: up.Name, Changes: up.Changes}
		if !dryRun {
			if err := st.UpdateUserFields(ctx, up.EntityID, up.Fields); err != nil {
				log.Warn("update failed", zap.String("name", up.Name), zap.Error(err))
				op.Error = err.Error()
				out.Failed++
				out.Operations = append(out.Operations, op)
				continue
			}
		}
		out.Updated++
		out.Operations = append(out.Operations, op)
		for _, c := range up.Changes {
			out.Mismatches = append(out.Mismatches, Mismatch{Name: up.Name, Field: c.Field, Old: c.Old, New: c.New})
		}
	}

	for _, ins := range plan.Inserts {
		op := Operation{Type: "insert", Name: ins.User.Name, Row: ins.Row}
		if !dryRun {
			if _, err := st.CreateUser(ctx, ins.User); err != nil {
				log.Warn("insert failed",
					zap.String("name", ins.User.Name),
					zap.Int("row", ins.Row),
					zap.Error(err))
				op.Error = err.Error()
				out.Failed++
				out.Operations = append(out.Operations, op)
				continue
			}
		}
		out.Inserted++
		out.Operations = append(out.Operations, op)
	}

	for _, del := range plan.Deletes {
		op := Operation{Type: "delete", Name: del.Name}
		if !dryRun {
			if err := st.DeleteUserCascade(ctx, del.EntityID); err != nil {
				log.Warn("delete failed", zap.String("name", del.Name), zap.Error(err))
				op.Error = err.Error()
				out.Failed++
				out.Operations = append(out.Operations, op)
				continue
			}
		}
		out.Deleted++
		out.Operations = append(out.Operations, op)
	}

	return out
}
