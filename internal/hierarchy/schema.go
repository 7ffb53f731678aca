package hierarchy

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Schema maps each level to the header names it may appear under in a
// reference sheet. Matching ignores case and repeated whitespace.
type Schema struct {
	Columns map[Level][]string
}

// DefaultSchema covers the headers seen in the DTR master workbooks.
func DefaultSchema() Schema {
	return Schema{Columns: map[Level][]string{
		Region:     {"Region"},
		Circle:     {"Circle"},
		Division:   {"Division"},
		Zone:       {"Zone"},
		Substation: {"Sub station", "Substation", "Sub station name"},
		Feeder:     {"Feeder", "Feeder name"},
		DTR:        {"Dtr", "Dtr name"},
		DTRCode:    {"Dtr code"},
		FeederCode: {"Feeder code"},
		MSN:        {"Msn", "Meter serial number", "Dtr meter serial number"},
	}}
}

type schemaFile struct {
	Columns map[string][]string `yaml:"columns"`
}

// LoadSchema reads a YAML file of header aliases and lays it over the
// default schema. Levels the file does not mention keep their defaults.
//
//	columns:
//	  substation: ["Sub station", "SS Name"]
//	  msn: ["Meter No"]
func LoadSchema(path string) (Schema, error) {
	s := DefaultSchema()
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	var f schemaFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return s, fmt.Errorf("parse schema %s: %w", path, err)
	}
	for key, aliases := range f.Columns {
		lvl, ok := ParseLevel(strings.TrimSpace(key))
		if !ok {
			return s, fmt.Errorf("schema %s: unknown level %q", path, key)
		}
		if len(aliases) == 0 {
			return s, fmt.Errorf("schema %s: level %q has no header names", path, key)
		}
		s.Columns[lvl] = aliases
	}
	return s, nil
}

// match returns the column index for each level found in header.
func (s Schema) match(header []string) map[Level]int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		n := normalizeHeader(h)
		if _, dup := byName[n]; !dup && n != "" {
			byName[n] = i
		}
	}
	out := make(map[Level]int)
	for _, lvl := range canonical {
		for _, alias := range s.Columns[lvl] {
			if i, ok := byName[normalizeHeader(alias)]; ok {
				out[lvl] = i
				break
			}
		}
	}
	return out
}

func normalizeHeader(s string) string {
	s = norm.NFC.String(strings.TrimPrefix(s, "\ufeff"))
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}
