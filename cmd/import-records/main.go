// Command import-records loads submissions from an old records sheet into
// the record store. Re-running it with the same namespace skips rows that
// are already stored; rows whose application number belongs to another
// record are listed and make it exit non-zero.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/EmpoweredVote/dtr-indexing/internal/db"
	"github.com/EmpoweredVote/dtr-indexing/internal/recordimport"
	"github.com/EmpoweredVote/dtr-indexing/internal/store"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		file      = flag.String("file", "", "records sheet (.csv or .xlsx)")
		sheet     = flag.String("sheet", "", "sheet name (default: first sheet)")
		dbURL     = flag.String("db", os.Getenv("DATABASE_URL"), "DATABASE_URL")
		namespace = flag.String("namespace", "", "UUID namespace for record IDs (required, stable forever)")
	)
	flag.Parse()

	if *file == "" || *dbURL == "" || *namespace == "" {
		flag.Usage()
		os.Exit(2)
	}

	ns, err := uuid.Parse(*namespace)
	if err != nil {
		log.Fatalf("invalid namespace uuid: %v", err)
	}

	recs, err := recordimport.ReadFile(*file, *sheet)
	if err != nil {
		log.Fatalf("Read %s: %v", *file, err)
	}

	conn, err := db.Open(*dbURL, time.Second)
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}
	pg := store.NewPostgres(conn)
	if err := pg.Migrate(); err != nil {
		log.Fatalf("Migrate: %v", err)
	}

	res, err := recordimport.Run(context.Background(), pg, ns, recs)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("✓ Imported %d records (%d already present)\n", res.Inserted, res.Skipped)
	if len(res.Conflicts) > 0 {
		for _, app := range res.Conflicts {
			fmt.Printf("✗ %s is already used by another record\n", app)
		}
		os.Exit(1)
	}
}
