// Command hierarchy-check loads a reference workbook the way the server
// does and prints what the cascade would offer.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/EmpoweredVote/dtr-indexing/internal/hierarchy"
	"github.com/EmpoweredVote/dtr-indexing/internal/msn"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		file   = flag.String("file", os.Getenv("HIERARCHY_PATH"), "reference workbook (.xlsx, .xlsm or .csv)")
		sheet  = flag.String("sheet", os.Getenv("HIERARCHY_SHEET"), "sheet name (default: first sheet)")
		schema = flag.String("schema", os.Getenv("HIERARCHY_SCHEMA"), "YAML column alias file")
		path   = flag.String("path", "", `selections to resolve, e.g. "region=North,circle=C1"`)
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts := hierarchy.LoadOptions{Sheet: *sheet}
	if *schema != "" {
		s, err := hierarchy.LoadSchema(*schema)
		if err != nil {
			log.Fatalf("Schema error: %v", err)
		}
		opts.Schema = s
	}

	t, err := hierarchy.Load(*file, opts)
	if err != nil {
		log.Fatalf("Load error: %v", err)
	}

	summarize(os.Stdout, t)

	if *path != "" {
		sel, err := parsePath(*path)
		if err != nil {
			log.Fatalf("Bad -path: %v", err)
		}
		fmt.Println()
		printCascade(os.Stdout, t.Resolve(sel))
	}
}

func summarize(w io.Writer, t *hierarchy.Table) {
	fmt.Fprintf(w, "Rows: %d\n", t.Len())
	for _, l := range t.Chain() {
		fmt.Fprintf(w, "  %-24s %d distinct\n", l.Label(), len(t.Values(l)))
	}
}

// parsePath reads "level=value,level=value" into selections.
func parsePath(s string) (map[hierarchy.Level]string, error) {
	out := make(map[hierarchy.Level]string)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%q is not level=value", part)
		}
		lvl, ok := hierarchy.ParseLevel(strings.TrimSpace(key))
		if !ok {
			return nil, fmt.Errorf("unknown level %q", key)
		}
		out[lvl] = strings.TrimSpace(value)
	}
	return out, nil
}

func printCascade(w io.Writer, p hierarchy.Path) {
	for _, s := range p.Steps {
		switch {
		case s.Resolved():
			fmt.Fprintf(w, "✓ %-24s %s\n", s.Label, s.Value)
		case len(s.Candidates) > 0:
			fmt.Fprintf(w, "? %-24s %s\n", s.Label, strings.Join(s.Candidates, " | "))
		default:
			fmt.Fprintf(w, "  %-24s -\n", s.Label)
		}
	}

	var step msn.Step
	if v, ok := p.Value(hierarchy.MSN); ok {
		step = msn.Suggest([]string{v})
	} else {
		step = msn.Suggest(p.Candidates(hierarchy.MSN))
	}
	if step.State() == msn.AutoSuggested {
		fmt.Fprintf(w, "\nSuggested meter serial: %s\n", step.Suggestion())
	}
}
