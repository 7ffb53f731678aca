// Command export-records writes every stored submission to an .xlsx
// workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/EmpoweredVote/dtr-indexing/internal/db"
	"github.com/EmpoweredVote/dtr-indexing/internal/export"
	"github.com/EmpoweredVote/dtr-indexing/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		out   = flag.String("out", "DTR_Indexation_Records.xlsx", "output workbook")
		dbURL = flag.String("db", "", "DATABASE_URL (default: from environment)")
		limit = flag.Int("limit", 0, "export at most this many records (0 = all)")
	)
	flag.Parse()

	if *dbURL == "" {
		*dbURL = os.Getenv("DATABASE_URL")
	}
	if *dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	conn, err := db.Open(*dbURL, time.Second)
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	recs, err := store.NewPostgres(conn).List(ctx, *limit)
	if err != nil {
		log.Fatalf("Query error: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Create %s: %v", *out, err)
	}
	if err := export.WriteWorkbook(f, recs); err != nil {
		f.Close()
		log.Fatalf("Write workbook: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Close %s: %v", *out, err)
	}

	fmt.Printf("✓ Wrote %d records to %s\n", len(recs), *out)
}
