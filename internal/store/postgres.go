package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/EmpoweredVote/dtr-indexing/internal/db"
	"github.com/EmpoweredVote/dtr-indexing/internal/record"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	schemaName     = "indexing"
	submissionsSeq = "submissions"
)

// Sequence is a named counter. The submissions counter is bumped in the same
// transaction that inserts the record.
type Sequence struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

func (Sequence) TableName() string { return "indexing.sequences" }

type Postgres struct {
	db *gorm.DB
}

func NewPostgres(d *gorm.DB) *Postgres {
	return &Postgres{db: d}
}

// Migrate creates the schema and tables and starts the counter at the
// current row count.
func (p *Postgres) Migrate() error {
	if err := db.EnsureSchema(p.db, schemaName); err != nil {
		return fmt.Errorf("ensure schema %s: %w", schemaName, err)
	}
	if err := p.db.AutoMigrate(&record.Record{}, &Sequence{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return p.db.Exec(`
		INSERT INTO indexing.sequences (name, value)
		SELECT ?, COALESCE(MAX(sequence), 0) FROM indexing.submissions
		ON CONFLICT (name) DO NOTHING
	`, submissionsSeq).Error
}

func (p *Postgres) Append(ctx context.Context, build Builder) (record.Record, error) {
	var out record.Record
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq int64
		// The upsert takes a row lock on the counter, so concurrent appends
		// queue here until the holder commits.
		if err := tx.Raw(`
			INSERT INTO indexing.sequences (name, value) VALUES (?, 1)
			ON CONFLICT (name) DO UPDATE SET value = indexing.sequences.value + 1
			RETURNING value
		`, submissionsSeq).Scan(&seq).Error; err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}

		rec, err := build(seq)
		if err != nil {
			return buildError{err}
		}
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		out = rec
		return nil
	})
	if err == nil {
		return out, nil
	}

	var be buildError
	if errors.As(err, &be) {
		return record.Record{}, be.err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		err = fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return record.Record{}, &PersistenceError{Op: "append", Err: err}
}

func (p *Postgres) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.WithContext(ctx).Model(&record.Record{}).Count(&n).Error; err != nil {
		return 0, &PersistenceError{Op: "count", Err: err}
	}
	return n, nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]record.Record, error) {
	q := p.db.WithContext(ctx).Order("sequence ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []record.Record
	if err := q.Find(&out).Error; err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return out, nil
}
