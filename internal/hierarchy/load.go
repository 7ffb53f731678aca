package hierarchy

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoDataRows = errors.New("reference sheet has no data rows")
	ErrNotLoaded  = errors.New("reference table not loaded")
)

// LoadError is returned when the reference dataset cannot be read or does
// not carry the required columns. No partial table is ever returned with it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return "load hierarchy: " + e.Err.Error()
	}
	return fmt.Sprintf("load hierarchy %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type LoadOptions struct {
	// Sheet is the workbook sheet to read. Empty means the first sheet.
	Sheet  string
	Schema Schema
}

// Load reads a reference dataset from an .xlsx workbook or a .csv file.
func Load(path string, opts LoadOptions) (*Table, error) {
	records, err := ReadRows(path, opts.Sheet)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	schema := opts.Schema
	if schema.Columns == nil {
		schema = DefaultSchema()
	}
	t, err := FromRecords(records, schema)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

// ReadRows returns the raw rows of a .csv file or of one workbook sheet.
// An empty sheet name means the first sheet.
func ReadRows(path, sheet string) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return readWorkbook(path, sheet)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	return f.GetRows(sheet)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// FromRecords builds a table from a header row followed by data rows. Cell
// values are trimmed; rows with every hierarchy cell blank are skipped.
func FromRecords(records [][]string, schema Schema) (*Table, error) {
	if len(records) < 2 {
		return nil, ErrNoDataRows
	}

	col := schema.match(records[0])
	var missing []string
	var chain Chain
	for _, lvl := range canonical {
		if _, ok := col[lvl]; ok {
			chain = append(chain, lvl)
			continue
		}
		if !lvl.Optional() {
			name := lvl.Label()
			if aliases := schema.Columns[lvl]; len(aliases) > 0 {
				name = aliases[0]
			}
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(chain))
		blank := true
		for i, lvl := range chain {
			if j := col[lvl]; j < len(rec) {
				row[i] = strings.TrimSpace(rec[j])
			}
			if row[i] != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return NewTable(chain, rows)
}
