package main

import (
	"flag"
	"log"

	"github.com/EmpoweredVote/dtr-indexing/internal/seeds"
)

func main() {
	out := flag.String("out", "reference.xlsx", "where to write the sample reference workbook")
	dtrs := flag.Int("dtrs", seeds.DefaultShape.DTRs, "DTRs per feeder")
	flag.Parse()

	shape := seeds.DefaultShape
	shape.DTRs = *dtrs
	rows := seeds.SampleRows(shape)

	if err := seeds.WriteReferenceWorkbook(*out, rows); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	t, err := seeds.Check(*out)
	if err != nil {
		log.Fatalf("❌ Written workbook does not load: %v", err)
	}
	log.Printf("✅ Wrote %d DTRs across %d levels to %s", t.Len(), len(t.Chain()), *out)
}
