// Package effects runs best-effort side writes next to a primary state change.
// A side write gets its own savepoint, so its failure is reported to the
// caller as a Result and never rolls back or fails the primary transition.
package effects

import (
	"log"

	"stagepay/internal/repositories"

	"github.com/google/uuid"
)

// Result is the outcome of one best-effort write.
type Result struct {
	Effect string
	Ref    uuid.UUID
	Err    error
}

func (r Result) OK() bool { return r.Err == nil }

// Run executes fn inside a savepoint of tx. fn returns the id of the row it
// wrote, if any.
func Run(tx repositories.Tx, effect string, fn func(tx repositories.Tx) (uuid.UUID, error)) Result {
	var ref uuid.UUID
	err := tx.Nested(func(inner repositories.Tx) error {
		id, err := fn(inner)
		ref = id
		return err
	})
	if err != nil {
		log.Printf("[effects] %s failed, continuing without it: %v", effect, err)
		return Result{Effect: effect, Err: err}
	}
	return Result{Effect: effect, Ref: ref}
}
