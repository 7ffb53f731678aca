package record

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a 12-hour wall-clock time as picked on the form.
type ClockTime struct {
	Hour   int // 1-12
	Minute int
	PM     bool
}

var clockRe = regexp.MustCompile(`^(\d{1,2})\s*:\s*(\d{2})\s*([AaPp][Mm])$`)

var ErrBadClock = errors.New("time must look like HH:MM AM or HH:MM PM")

// ParseClock accepts "10:00 AM", "1:05pm" and similar.
func ParseClock(s string) (ClockTime, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ClockTime{}, ErrBadClock
	}
	h, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if h < 1 || h > 12 || minute > 59 {
		return ClockTime{}, ErrBadClock
	}
	return ClockTime{Hour: h, Minute: minute, PM: strings.EqualFold(m[3], "pm")}, nil
}

// String renders HH:MM AM|PM with both fields zero padded.
func (c ClockTime) String() string {
	suffix := "AM"
	if c.PM {
		suffix = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", c.Hour, c.Minute, suffix)
}

// Minutes is the number of minutes since midnight. 12 AM is hour 0 and
// 12 PM is hour 12.
func (c ClockTime) Minutes() int {
	h := c.Hour % 12
	if c.PM {
		h += 12
	}
	return h*60 + c.Minute
}

func (c ClockTime) Before(o ClockTime) bool { return c.Minutes() < o.Minutes() }

const (
	isoDate  = "2006-01-02"
	formDate = "02-01-2006"
)

var ErrBadDate = errors.New("date must be YYYY-MM-DD or DD-MM-YYYY")

// ParseDate accepts the date picker's YYYY-MM-DD as well as DD-MM-YYYY.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{isoDate, formDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadDate
}

// FormatDate renders DD-MM-YYYY.
func FormatDate(t time.Time) string { return t.Format(formDate) }

// ApplicationNumber is the submission date as DDMMYYYY followed by the
// sequence number padded to four digits.
func ApplicationNumber(now time.Time, seq int64) string {
	return now.Format("02012006") + fmt.Sprintf("%04d", seq)
}
