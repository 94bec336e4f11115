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

package scout

import (
	"context"
	"testing"

	chess "github.com/brighamskarda/scoutfish"
	"github.com/brighamskarda/scoutfish/internal/dbio"
	"github.com/brighamskarda/scoutfish/internal/ingest"
	"github.com/brighamskarda/scoutfish/internal/query"
)

func buildTestDB(t *testing.T, games [][]chess.Move, results []chess.GameResult) []byte {
	t.Helper()
	path := t.TempDir() + "/test.bin"
	w, err := dbio.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for i, moves := range games {
		if err := w.WriteGame(ingest.CompiledGame{
			Offset: int64(i * 100),
			Result: results[i],
			Moves:  moves,
		}); err != nil {
			t.Fatalf("WriteGame: %v", err)
		}
	}
	if _, err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mf, err := dbio.OpenMapped(path)
	if err != nil {
		t.Fatalf("OpenMapped: %v", err)
	}
	t.Cleanup(func() { mf.Close() })
	return mf.Data()
}

func TestAlign_startOfFileSkipsLeadingSeparator(t *testing.T) {
	data := buildTestDB(t, [][]chess.Move{{{FromSquare: chess.E2, ToSquare: chess.E4}}}, []chess.GameResult{chess.DrawResult})
	if got := Align(data, 0); got != dbio.MoveSize {
		t.Errorf("Align(data, 0) = %d, want %d", got, dbio.MoveSize)
	}
}

func TestAlign_everyOffsetLandsOnASeparator(t *testing.T) {
	data := buildTestDB(t, [][]chess.Move{
		{{FromSquare: chess.E2, ToSquare: chess.E4}, {FromSquare: chess.E7, ToSquare: chess.E5}},
		{{FromSquare: chess.D2, ToSquare: chess.D4}},
	}, []chess.GameResult{chess.DrawResult, chess.WhiteWinResult})

	for s := 0; s < len(data); s++ {
		aligned := Align(data, s)
		if aligned < s {
			t.Fatalf("Align(data, %d) = %d, want >= %d", s, aligned, s)
		}
		if aligned > len(data) {
			t.Fatalf("Align(data, %d) = %d, want <= len(data)=%d", s, aligned, len(data))
		}
		if aligned < len(data) && aligned >= dbio.MoveSize && !dbio.IsSeparator(data, aligned-dbio.MoveSize) {
			t.Fatalf("Align(data, %d) = %d, not immediately after a separator", s, aligned)
		}
	}
}

func TestRun_shardingEquivalence(t *testing.T) {
	data := buildTestDB(t, [][]chess.Move{
		{{FromSquare: chess.E2, ToSquare: chess.E4}, {FromSquare: chess.E7, ToSquare: chess.E5}},
		{{FromSquare: chess.D2, ToSquare: chess.D4}, {FromSquare: chess.D7, ToSquare: chess.D5}},
		{{FromSquare: chess.G1, ToSquare: chess.F3}},
	}, []chess.GameResult{chess.DrawResult, chess.WhiteWinResult, chess.BlackWinResult})

	q, err := query.Compile([]byte(`{"pass": true}`))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	oneWorker, err := Run(context.Background(), data, q.Conditions, 1, 0)
	if err != nil {
		t.Fatalf("Run(1): %v", err)
	}
	fourWorkers, err := Run(context.Background(), data, q.Conditions, 4, 0)
	if err != nil {
		t.Fatalf("Run(4): %v", err)
	}

	countMatches := func(results []WorkerResult) int {
		n := 0
		for _, r := range results {
			n += len(r.Matches)
		}
		return n
	}

	if countMatches(oneWorker) != countMatches(fourWorkers) {
		t.Errorf("1-worker matches = %d, 4-worker matches = %d, want equal",
			countMatches(oneWorker), countMatches(fourWorkers))
	}
}

func TestScanGame_subFenMatchesAtCorrectPly(t *testing.T) {
	moves := []chess.Move{
		{FromSquare: chess.E2, ToSquare: chess.E4}, {FromSquare: chess.E7, ToSquare: chess.E5},
		{FromSquare: chess.G1, ToSquare: chess.F3}, {FromSquare: chess.B8, ToSquare: chess.C6},
		{FromSquare: chess.F1, ToSquare: chess.B5}, {FromSquare: chess.A7, ToSquare: chess.A6},
		{FromSquare: chess.B5, ToSquare: chess.A4}, {FromSquare: chess.G8, ToSquare: chess.F6},
		{FromSquare: chess.D2, ToSquare: chess.D3}, {FromSquare: chess.F8, ToSquare: chess.E7},
	}
	data := buildTestDB(t, [][]chess.Move{moves}, []chess.GameResult{chess.DrawResult})

	q, err := query.Compile([]byte(`{"sub-fen": "8/8/8/8/8/3P4/8/8"}`))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	results, err := Run(context.Background(), data, q.Conditions, 1, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var matches []Match
	for _, r := range results {
		matches = append(matches, r.Matches...)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	if len(matches[0].Plies) != 1 || matches[0].Plies[0] != 9 {
		t.Errorf("match plies = %+v, want [9] (pawn lands on d3 at ply 9)", matches[0].Plies)
	}
}

func TestAggregate_skipLimitComposition(t *testing.T) {
	results := []WorkerResult{
		{Matches: []Match{{Offset: 1}, {Offset: 2}}, MovesSeen: 10},
		{Matches: []Match{{Offset: 3}, {Offset: 4}, {Offset: 5}}, MovesSeen: 15},
	}
	rep := Aggregate(results, 1, 2, 1.0)
	if rep.MatchCount != 2 {
		t.Fatalf("MatchCount = %d, want 2", rep.MatchCount)
	}
	if rep.Matches[0].Offset != 2 || rep.Matches[1].Offset != 3 {
		t.Errorf("Matches = %+v, want offsets [2 3]", rep.Matches)
	}
	if rep.Moves != 25 {
		t.Errorf("Moves = %d, want 25", rep.Moves)
	}
}
