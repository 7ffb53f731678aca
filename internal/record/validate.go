package record

import (
	"strings"
)

// Form is what the officer types or picks besides the hierarchy.
type Form struct {
	OffTime     string `json:"off_time"`
	OnTime      string `json:"on_time"`
	Date        string `json:"date"`
	OfficerName string `json:"officer_name"`
	Mobile      string `json:"mobile"`
}

// ValidationError carries every problem found in one submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid submission: " + strings.Join(e.Problems, "; ")
}

type Validator struct {
	// EnforceTimeOrder rejects a restart time that is not after the
	// shutdown time on the same day.
	EnforceTimeOrder bool
}

// Validate checks a form and the confirmed meter serial. It returns nil or a
// *ValidationError listing all problems.
func (v Validator) Validate(f Form, finalMSN string, haveMSN bool) error {
	var problems []string

	if strings.TrimSpace(f.OfficerName) == "" {
		problems = append(problems, "Officer name is required")
	}

	mobile := strings.TrimSpace(f.Mobile)
	switch {
	case mobile == "":
		problems = append(problems, "Mobile number is required")
	case !ValidMobile(mobile):
		problems = append(problems, "Mobile number must be exactly 10 digits")
	}

	if !haveMSN || strings.TrimSpace(finalMSN) == "" {
		problems = append(problems, "Meter serial number is required")
	}

	off, offOK := checkClock(&problems, f.OffTime, "Shutdown time")
	on, onOK := checkClock(&problems, f.OnTime, "Restart time")
	if v.EnforceTimeOrder && offOK && onOK && !off.Before(on) {
		problems = append(problems, "Restart time must be after shutdown time")
	}

	if strings.TrimSpace(f.Date) == "" {
		problems = append(problems, "Date is required")
	} else if _, err := ParseDate(f.Date); err != nil {
		problems = append(problems, "Date must be YYYY-MM-DD or DD-MM-YYYY")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func checkClock(problems *[]string, raw, field string) (ClockTime, bool) {
	if strings.TrimSpace(raw) == "" {
		*problems = append(*problems, field+" is required")
		return ClockTime{}, false
	}
	c, err := ParseClock(raw)
	if err != nil {
		*problems = append(*problems, field+" must look like HH:MM AM")
		return ClockTime{}, false
	}
	return c, true
}

// ValidMobile reports whether s is exactly ten ASCII digits.
func ValidMobile(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
