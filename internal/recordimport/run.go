package recordimport

import (
	"context"
	"errors"
	"fmt"

	"github.com/EmpoweredVote/dtr-indexing/internal/record"
	"github.com/EmpoweredVote/dtr-indexing/internal/store"
	"github.com/google/uuid"
)

// RecordID is the stable ID of an imported submission, so running the same
// import twice lands on the same rows.
func RecordID(ns uuid.UUID, applicationNumber string) uuid.UUID {
	return uuid.NewSHA1(ns, []byte("submission:"+applicationNumber))
}

type Result struct {
	Inserted int
	Skipped  int
	// Conflicts lists application numbers already held by a different
	// record. Those rows are not written.
	Conflicts []string
}

// Run appends each record through the store, in file order. A record is
// skipped when the same import already stored it, and reported as a conflict
// when its application number belongs to any other record.
func Run(ctx context.Context, st store.Store, ns uuid.UUID, recs []record.Record) (Result, error) {
	var res Result

	existing, err := st.List(ctx, 0)
	if err != nil {
		return res, fmt.Errorf("list stored records: %w", err)
	}
	stored := make(map[string]uuid.UUID, len(existing))
	for _, e := range existing {
		stored[e.ApplicationNumber] = e.ID
	}

	for _, rec := range recs {
		rec.ID = RecordID(ns, rec.ApplicationNumber)

		if id, ok := stored[rec.ApplicationNumber]; ok {
			if id == rec.ID {
				res.Skipped++
			} else {
				res.Conflicts = append(res.Conflicts, rec.ApplicationNumber)
			}
			continue
		}

		_, err := st.Append(ctx, func(seq int64) (record.Record, error) {
			rec.Sequence = seq
			return rec, nil
		})
		switch {
		case errors.Is(err, store.ErrDuplicate):
			res.Conflicts = append(res.Conflicts, rec.ApplicationNumber)
		case err != nil:
			return res, fmt.Errorf("import %s: %w", rec.ApplicationNumber, err)
		default:
			res.Inserted++
		}
	}
	return res, nil
}
