package indexing

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/EmpoweredVote/dtr-indexing/internal/export"
	"github.com/EmpoweredVote/dtr-indexing/internal/hierarchy"
	"github.com/EmpoweredVote/dtr-indexing/internal/msn"
	"github.com/EmpoweredVote/dtr-indexing/internal/record"
	"github.com/EmpoweredVote/dtr-indexing/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgNotLoaded   = "Reference data is not available right now, please try again later"
	msgNotSaved    = "Could not save the submission, please try again"
	msgIncomplete  = "Submission is incomplete"
	msgChooseMSN   = "Confirm the meter serial number or enter a new one"
	maxSubmission  = 64 << 10
	exportFilename = "DTR_Indexation_Records.xlsx"
	xlsxType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// table returns the reference table or writes a 503.
func (h *Handler) table(w http.ResponseWriter) (*hierarchy.Table, bool) {
	t, err := h.Holder.Current()
	if err != nil {
		h.Log.Error("reference table unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, msgNotLoaded)
		return nil, false
	}
	return t, true
}

type levelInfo struct {
	Key      hierarchy.Level `json:"key"`
	Label    string          `json:"label"`
	Optional bool            `json:"optional,omitempty"`
}

func (h *Handler) Levels(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w)
	if !ok {
		return
	}
	var levels []levelInfo
	for _, l := range t.Chain() {
		levels = append(levels, levelInfo{Key: l, Label: l.Label(), Optional: l.Optional()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"levels":    levels,
		"rows":      t.Len(),
		"loaded_at": h.Holder.LoadedAt(),
	})
}

// selections reads level values keyed by level name, ignoring unknown keys
// and empty values.
func selections(get func(key string) string, chain hierarchy.Chain) map[hierarchy.Level]string {
	out := make(map[hierarchy.Level]string, len(chain))
	for _, l := range chain {
		if v := get(string(l)); v != "" {
			out[l] = v
		}
	}
	return out
}

type msnView struct {
	State      msn.State `json:"state"`
	Suggestion string    `json:"suggestion,omitempty"`
}

type cascadeResponse struct {
	Steps    []hierarchy.Step `json:"steps"`
	Complete bool             `json:"complete"`
	Next     hierarchy.Level  `json:"next,omitempty"`
	MSN      msnView          `json:"msn"`
}

// suggestMSN starts the confirmation step from the serial on the resolved
// path, or from the first serial recorded for the selected DTR.
func suggestMSN(p hierarchy.Path) msn.Step {
	if v, ok := p.Value(hierarchy.MSN); ok {
		return msn.Suggest([]string{v})
	}
	return msn.Suggest(p.Candidates(hierarchy.MSN))
}

func (h *Handler) Cascade(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w)
	if !ok {
		return
	}
	p := t.Resolve(selections(r.URL.Query().Get, t.Chain()))
	step := suggestMSN(p)

	resp := cascadeResponse{
		Steps:    p.Steps,
		Complete: p.Complete(),
		MSN:      msnView{State: step.State(), Suggestion: step.Suggestion()},
	}
	if next, ok := p.Next(); ok {
		resp.Next = next.Level
	}
	writeJSON(w, http.StatusOK, resp)
}

// Candidates exposes the raw lookup for one level. The query must name every
// level above it; otherwise the list is empty.
func (h *Handler) Candidates(w http.ResponseWriter, r *http.Request) {
	level, ok := hierarchy.ParseLevel(chi.URLParam(r, "level"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown level")
		return
	}
	t, ok := h.table(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	var filters []hierarchy.Filter
	for _, l := range t.Chain() {
		if l == level {
			break
		}
		v := q.Get(string(l))
		if v == "" && !l.Optional() {
			break
		}
		filters = append(filters, hierarchy.Filter{Level: l, Value: v})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"level":      level,
		"candidates": t.CandidatesFor(level, filters),
	})
}

// SubmissionRequest is the form body of POST /submissions.
type SubmissionRequest struct {
	Path        map[string]string `json:"path"`
	MSNChoice   msn.Choice        `json:"msn_choice"`
	MSNOverride string            `json:"msn_override"`
	record.Form
}

// Receipt is returned for an accepted submission.
type Receipt struct {
	ApplicationNumber string    `json:"application_number"`
	Feeder            string    `json:"feeder"`
	FeederCode        string    `json:"feeder_code"`
	DTR               string    `json:"dtr"`
	FinalMSN          string    `json:"final_msn"`
	MSNState          msn.State `json:"msn_state"`
	OffTime           string    `json:"off_time"`
	OnTime            string    `json:"on_time"`
	Date              string    `json:"date"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmission)
	var req SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, ok := h.table(w)
	if !ok {
		return
	}

	sel := selections(func(k string) string { return req.Path[k] }, t.Chain())
	p := t.Resolve(sel)

	// A pending MSN step is only a problem when the client named a serial;
	// otherwise the DTR's first serial is offered for confirmation.
	var problems []string
	if next, ok := p.Next(); ok && (next.Level != hierarchy.MSN || req.Path[string(hierarchy.MSN)] != "") {
		problems = append(problems, next.Label+" must be selected")
	}

	step := suggestMSN(p)
	confirmed, err := step.Apply(req.MSNChoice, req.MSNOverride)
	var (
		finalMSN string
		haveMSN  bool
	)
	switch {
	case errors.Is(err, msn.ErrUnknownChoice):
		problems = append(problems, msgChooseMSN)
		finalMSN, haveMSN = step.Suggestion(), true
	case err != nil:
		// Nothing to confirm; the validator reports the missing serial.
	default:
		finalMSN, haveMSN = confirmed.Final()
	}

	var verr *record.ValidationError
	if err := h.Validator.Validate(req.Form, finalMSN, haveMSN); errors.As(err, &verr) {
		problems = append(problems, verr.Problems...)
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: msgIncomplete, Errors: problems})
		return
	}

	// The record keeps the system-of-record serial on the path.
	sel[hierarchy.MSN] = confirmed.Suggestion()
	p = t.Resolve(sel)

	now := h.now()
	rec, err := h.Store.Append(r.Context(), func(seq int64) (record.Record, error) {
		return record.Assemble(record.Input{
			Path:        p,
			MSNAuto:     confirmed.Suggestion(),
			MSNOverride: confirmed.OverrideValue(),
			FinalMSN:    finalMSN,
			Form:        req.Form,
			Sequence:    seq,
			Now:         now,
		})
	})
	if err != nil {
		var perr *store.PersistenceError
		if errors.As(err, &perr) {
			h.Log.Error("submission not stored", zap.Error(err))
			writeError(w, http.StatusBadGateway, msgNotSaved)
			return
		}
		h.Log.Error("submission could not be assembled", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	h.Log.Info("submission stored",
		zap.String("application_number", rec.ApplicationNumber),
		zap.Int64("sequence", rec.Sequence),
		zap.String("dtr_code", rec.DTRCode),
		zap.String("msn_state", string(confirmed.State())),
	)

	writeJSON(w, http.StatusCreated, Receipt{
		ApplicationNumber: rec.ApplicationNumber,
		Feeder:            rec.Feeder,
		FeederCode:        rec.FeederCode,
		DTR:               rec.DTR,
		FinalMSN:          rec.MSNFinal,
		MSNState:          confirmed.State(),
		OffTime:           rec.OffTime,
		OnTime:            rec.OnTime,
		Date:              rec.EventDate,
	})
}

func (h *Handler) RecordCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.Store.Count(r.Context())
	if err != nil {
		h.Log.Error("count records", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Could not read the record store")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *Handler) ReloadReference(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.Holder.Reload(); err != nil {
		h.Log.Error("reference reload failed", zap.Error(err))
		msg := "Reload failed: " + err.Error()
		if prev, _ := h.Holder.Current(); prev != nil {
			msg += "; previous reference data is still in service"
		}
		writeError(w, http.StatusServiceUnavailable, msg)
		return
	}

	t, _ := h.Holder.Current()
	h.Log.Info("reference table reloaded",
		zap.Int("rows", t.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":      t.Len(),
		"levels":    t.Chain(),
		"loaded_at": h.Holder.LoadedAt(),
	})
}

func (h *Handler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.List(r.Context(), 0)
	if err != nil {
		h.Log.Error("list records", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Could not read the record store")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, recs); err != nil {
		h.Log.Error("write workbook", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not build the workbook")
		return
	}

	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
