package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/EmpoweredVote/dtr-indexing/internal/record"
	"github.com/google/uuid"
)

// Memory keeps records in process. It is used by tests and local runs.
type Memory struct {
	mu      sync.Mutex
	seq     int64
	rows    []record.Record
	numbers map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{numbers: make(map[string]struct{})}
}

func (m *Memory) Append(ctx context.Context, build Builder) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, &PersistenceError{Op: "append", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seq := m.seq + 1
	rec, err := build(seq)
	if err != nil {
		return record.Record{}, err
	}
	if _, dup := m.numbers[rec.ApplicationNumber]; dup {
		return record.Record{}, &PersistenceError{
			Op:  "append",
			Err: fmt.Errorf("%w: application number %s", ErrDuplicate, rec.ApplicationNumber),
		}
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	m.seq = seq
	m.numbers[rec.ApplicationNumber] = struct{}{}
	m.rows = append(m.rows, rec)
	return rec, nil
}

func (m *Memory) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

func (m *Memory) List(ctx context.Context, limit int) ([]record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.rows)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]record.Record, n)
	copy(out, m.rows[:n])
	return out, nil
}
