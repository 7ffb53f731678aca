package record

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EmpoweredVote/dtr-indexing/internal/hierarchy"
)

var ErrIncompletePath = errors.New("hierarchy path is not fully resolved")

// Input is everything Assemble needs for one record.
type Input struct {
	Path        hierarchy.Path
	MSNAuto     string
	MSNOverride string
	FinalMSN    string
	Form        Form
	Sequence    int64
	Now         time.Time
}

// Assemble builds the record for a validated submission. It has no side
// effects; the ID is left for the store to assign. It fails only when the
// inputs break the preconditions Validate checks.
func Assemble(in Input) (Record, error) {
	if !in.Path.Complete() {
		return Record{}, ErrIncompletePath
	}
	off, err := ParseClock(in.Form.OffTime)
	if err != nil {
		return Record{}, fmt.Errorf("shutdown time: %w", err)
	}
	on, err := ParseClock(in.Form.OnTime)
	if err != nil {
		return Record{}, fmt.Errorf("restart time: %w", err)
	}
	date, err := ParseDate(in.Form.Date)
	if err != nil {
		return Record{}, err
	}

	v := func(l hierarchy.Level) string {
		s, _ := in.Path.Value(l)
		return s
	}
	var path []string
	for _, f := range in.Path.Filters() {
		if f.Value != "" {
			path = append(path, f.Value)
		}
	}

	return Record{
		Sequence:          in.Sequence,
		ApplicationNumber: ApplicationNumber(in.Now, in.Sequence),

		Region:     v(hierarchy.Region),
		Circle:     v(hierarchy.Circle),
		Division:   v(hierarchy.Division),
		Zone:       v(hierarchy.Zone),
		Substation: v(hierarchy.Substation),
		Feeder:     v(hierarchy.Feeder),
		DTR:        v(hierarchy.DTR),
		DTRCode:    v(hierarchy.DTRCode),
		FeederCode: v(hierarchy.FeederCode),

		MSNAuto:     in.MSNAuto,
		MSNOverride: in.MSNOverride,
		MSNFinal:    in.FinalMSN,

		OffTime:     off.String(),
		OnTime:      on.String(),
		EventDate:   FormatDate(date),
		OfficerName: strings.TrimSpace(in.Form.OfficerName),
		Mobile:      strings.TrimSpace(in.Form.Mobile),

		Path:        path,
		SubmittedAt: in.Now,
	}, nil
}
