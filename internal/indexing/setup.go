package indexing

import (
	"fmt"
	"time"

	"github.com/EmpoweredVote/dtr-indexing/internal/config"
	"github.com/EmpoweredVote/dtr-indexing/internal/db"
	"github.com/EmpoweredVote/dtr-indexing/internal/hierarchy"
	"github.com/EmpoweredVote/dtr-indexing/internal/record"
	"github.com/EmpoweredVote/dtr-indexing/internal/store"
	"go.uber.org/zap"
)

// Handler serves the indexing form. All fields are required except Now,
// which defaults to time.Now.
type Handler struct {
	Holder    *hierarchy.Holder
	Store     store.Store
	Validator record.Validator
	Location  *time.Location
	Now       func() time.Time
	Log       *zap.Logger
}

func (h *Handler) now() time.Time {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// Init builds the handler from configuration. A reference file that fails
// to load is logged and left for an admin reload; the service still starts
// and answers with 503 until a table is in place.
func Init(cfg config.Config, log *zap.Logger) (*Handler, error) {
	opts := hierarchy.LoadOptions{Sheet: cfg.HierarchySheet}
	if cfg.HierarchySchema != "" {
		schema, err := hierarchy.LoadSchema(cfg.HierarchySchema)
		if err != nil {
			return nil, fmt.Errorf("hierarchy schema: %w", err)
		}
		opts.Schema = schema
	}

	holder := hierarchy.NewHolder(hierarchy.Source{Path: cfg.HierarchyPath, Options: opts})
	if err := holder.Reload(); err != nil {
		log.Error("reference table not loaded", zap.Error(err))
	} else if t, _ := holder.Current(); t != nil {
		log.Info("reference table loaded",
			zap.String("path", cfg.HierarchyPath),
			zap.Int("rows", t.Len()),
			zap.Int("levels", len(t.Chain())),
		)
	}

	st, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Handler{
		Holder:    holder,
		Store:     st,
		Validator: record.Validator{EnforceTimeOrder: cfg.EnforceTimeOrder},
		Location:  cfg.Location(),
		Log:       log,
	}, nil
}

func openStore(cfg config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory record store; submissions are lost on restart")
		return store.NewMemory(), nil
	}

	conn, err := db.Open(cfg.DatabaseURL, 200*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	pg := store.NewPostgres(conn)
	if err := pg.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate record store: %w", err)
	}
	return pg, nil
}
