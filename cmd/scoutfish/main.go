// Copyright (C) 2025 Brigham Skarda

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command scoutfish ingests PGN databases and runs structured scout
// queries over the compiled result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/brighamskarda/scoutfish/internal/dbio"
	"github.com/brighamskarda/scoutfish/internal/ingest"
	"github.com/brighamskarda/scoutfish/internal/pgnscan"
	"github.com/brighamskarda/scoutfish/internal/query"
	"github.com/brighamskarda/scoutfish/internal/scout"
)

var threads = flag.Int("threads", runtime.NumCPU(), "number of scout worker goroutines")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: scoutfish make-db <pgn-path> | scoutfish scout <db-path>")
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "make-db":
		err = makeDB(args[1])
	case "scout":
		err = runScout(args[1], *threads)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		os.Exit(2)
	}
	if err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

// makeDB implements "make-db <pgn-path>": ingest PGN, write <pgn-base>.bin,
// and print ingestion stats to stderr.
func makeDB(pgnPath string) error {
	start := time.Now()

	src, err := dbio.OpenMapped(pgnPath)
	if err != nil {
		return fmt.Errorf("scoutfish: %w", err)
	}
	defer src.Close()

	dbPath := strings.TrimSuffix(pgnPath, filepath.Ext(pgnPath)) + ".bin"
	w, err := dbio.NewWriter(dbPath)
	if err != nil {
		return fmt.Errorf("scoutfish: %w", err)
	}

	var stats ingest.Stats
	var written int
	scanErr := pgnscan.Scan(src.Data(), func(g pgnscan.Game) {
		cg, ok := ingest.Compile(g, &stats)
		if !ok {
			return
		}
		if err := w.WriteGame(cg); err != nil {
			log.Printf("scoutfish: write game at offset %d: %v", g.Offset, err)
			return
		}
		written++
	})

	size, closeErr := w.Close()
	if scanErr != nil {
		return fmt.Errorf("scoutfish: ingestion aborted: %w", scanErr)
	}
	if closeErr != nil {
		return fmt.Errorf("scoutfish: %w", closeErr)
	}

	elapsed := time.Since(start)
	fmt.Fprintf(os.Stderr, "games: %d\n", stats.Games)
	fmt.Fprintf(os.Stderr, "moves: %d\n", stats.Moves)
	fmt.Fprintf(os.Stderr, "fixed: %d\n", stats.Fixed)
	fmt.Fprintf(os.Stderr, "warned: %d\n", stats.Warned)
	fmt.Fprintf(os.Stderr, "games/sec: %.0f\n", float64(stats.Games)/elapsed.Seconds())
	fmt.Fprintf(os.Stderr, "moves/sec: %.0f\n", float64(stats.Moves)/elapsed.Seconds())
	fmt.Fprintf(os.Stderr, "MB/sec: %.2f\n", float64(len(src.Data()))/(1<<20)/elapsed.Seconds())
	fmt.Fprintf(os.Stderr, "db path: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "db size: %d\n", size)
	fmt.Fprintf(os.Stderr, "elapsed ms: %d\n", elapsed.Milliseconds())
	return nil
}

// runScout implements "scout <db-path>": read a JSON query from stdin,
// execute it against the compiled database, and emit the resulting JSON
// report on stdout.
func runScout(dbPath string, numWorkers int) error {
	queryBytes, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("scoutfish: reading query from stdin: %w", err)
	}
	q, err := query.Compile(queryBytes)
	if err != nil {
		return fmt.Errorf("scoutfish: %w", err)
	}

	db, err := dbio.OpenMapped(dbPath)
	if err != nil {
		return fmt.Errorf("scoutfish: %w", err)
	}
	defer db.Close()

	start := time.Now()
	results, err := scout.Run(context.Background(), db.Data(), q.Conditions, numWorkers, q.Limit)
	if err != nil {
		return fmt.Errorf("scoutfish: %w", err)
	}
	elapsed := time.Since(start)

	report := scout.Aggregate(results, q.Skip, q.Limit, elapsed.Seconds())
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
