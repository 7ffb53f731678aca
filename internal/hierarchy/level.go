package hierarchy

import (
	"errors"
	"fmt"
)

// Level identifies one column of the organisational hierarchy.
type Level string

const (
	Region     Level = "region"
	Circle     Level = "circle"
	Division   Level = "division"
	Zone       Level = "zone"
	Substation Level = "substation"
	Feeder     Level = "feeder"
	DTR        Level = "dtr"
	DTRCode    Level = "dtr_code"
	FeederCode Level = "feeder_code"
	MSN        Level = "msn"
)

// canonical is the full level order. Zone is the only level a reference
// sheet may leave out.
var canonical = []Level{Region, Circle, Division, Zone, Substation, Feeder, DTR, DTRCode, FeederCode, MSN}

var labels = map[Level]string{
	Region:     "Region",
	Circle:     "Circle",
	Division:   "Division",
	Zone:       "Zone",
	Substation: "Substation",
	Feeder:     "Feeder",
	DTR:        "DTR Name",
	DTRCode:    "DTR Code",
	FeederCode: "Feeder Code",
	MSN:        "DTR Meter Serial Number",
}

func (l Level) Label() string {
	if s, ok := labels[l]; ok {
		return s
	}
	return string(l)
}

func (l Level) Optional() bool { return l == Zone }

// ParseLevel maps a level key ("dtr_code") to its Level.
func ParseLevel(s string) (Level, bool) {
	for _, l := range canonical {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// Levels returns the canonical level order, zone included.
func Levels() []Level {
	out := make([]Level, len(canonical))
	copy(out, canonical)
	return out
}

// Chain is the ordered list of levels a loaded table carries.
type Chain []Level

// DefaultChain is the chain of a reference sheet without a Zone column.
func DefaultChain() Chain {
	out := make(Chain, 0, len(canonical)-1)
	for _, l := range canonical {
		if l != Zone {
			out = append(out, l)
		}
	}
	return out
}

// Index returns the position of l in the chain, or -1.
func (c Chain) Index(l Level) int {
	for i, x := range c {
		if x == l {
			return i
		}
	}
	return -1
}

func (c Chain) Has(l Level) bool { return c.Index(l) >= 0 }

// validate checks that c is the canonical order with at most the optional
// levels left out.
func (c Chain) validate() error {
	if len(c) == 0 {
		return errors.New("empty level chain")
	}
	i := 0
	for _, l := range canonical {
		if i < len(c) && c[i] == l {
			i++
			continue
		}
		if !l.Optional() {
			return fmt.Errorf("level chain missing %s", l)
		}
	}
	if i != len(c) {
		return fmt.Errorf("level chain out of order at %q", c[i])
	}
	return nil
}
