// Package store persists accepted submissions. Every implementation hands
// out sequence numbers and appends in one atomic step, so two concurrent
// submissions never share a sequence number.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/EmpoweredVote/dtr-indexing/internal/record"
)

// Builder assembles the record for an allocated sequence number.
type Builder func(seq int64) (record.Record, error)

type Store interface {
	// Append allocates the next sequence number, builds the record for it
	// and persists it. Errors returned by build come back unchanged; all
	// other failures are *PersistenceError.
	Append(ctx context.Context, build Builder) (record.Record, error)
	Count(ctx context.Context) (int64, error)
	// List returns records in append order. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]record.Record, error)
}

var ErrDuplicate = errors.New("duplicate submission")

// PersistenceError reports a failed store operation. The submission it
// carried is not retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// buildError marks a Builder failure so it can pass through a transaction
// untouched.
type buildError struct{ err error }

func (e buildError) Error() string { return e.err.Error() }
