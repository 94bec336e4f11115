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

package ingest

import (
	"testing"

	chess "github.com/brighamskarda/scoutfish"
	"github.com/brighamskarda/scoutfish/internal/pgnscan"
)

func TestCompile_basicGame(t *testing.T) {
	g := pgnscan.Game{
		Offset: 0,
		SAN:    []string{"e4", "e5", "Nf3", "Nc6"},
		Result: "1/2-1/2",
	}
	stats := &Stats{}

	cg, ok := Compile(g, stats)
	if !ok {
		t.Fatalf("Compile reported ok = false")
	}
	if len(cg.Moves) != 4 {
		t.Fatalf("got %d moves, want 4", len(cg.Moves))
	}
	if cg.Result != chess.DrawResult {
		t.Errorf("Result = %v, want DrawResult", cg.Result)
	}
	if stats.Games != 1 || stats.Moves != 4 {
		t.Errorf("stats = %+v, want Games=1 Moves=4", stats)
	}
}

func TestCompile_illegalSanTruncates(t *testing.T) {
	g := pgnscan.Game{
		Offset: 0,
		SAN:    []string{"e4", "e5", "Qh5", "Nf6", "Bxf9"},
		Result: "1-0",
	}
	stats := &Stats{}

	cg, ok := Compile(g, stats)
	if !ok {
		t.Fatalf("Compile reported ok = false")
	}
	if len(cg.Moves) != 4 {
		t.Errorf("got %d moves, want 4 (truncated before the illegal token)", len(cg.Moves))
	}
	if stats.Warned != 1 {
		t.Errorf("stats.Warned = %d, want 1", stats.Warned)
	}
}

func TestCompile_gameWithSetupFenIsValidatedButNotWritten(t *testing.T) {
	g := pgnscan.Game{
		Offset: 0,
		FEN:    "8/8/8/8/8/8/8/k6K b - - 0 1",
		SAN:    []string{"Kb2"},
		Result: "1/2-1/2",
	}
	stats := &Stats{}

	_, ok := Compile(g, stats)
	if ok {
		t.Errorf("Compile reported ok = true for a game with a setup FEN")
	}
	if stats.Games != 1 || stats.Moves != 1 {
		t.Errorf("stats = %+v, want Games=1 Moves=1 (validation still counted)", stats)
	}
}

func TestCompile_nullMoveAdvancesSideToMove(t *testing.T) {
	g := pgnscan.Game{
		Offset: 0,
		SAN:    []string{"e4", "--", "Nf3"},
		Result: "*",
	}
	stats := &Stats{}

	cg, ok := Compile(g, stats)
	if !ok {
		t.Fatalf("Compile reported ok = false")
	}
	if len(cg.Moves) != 2 {
		t.Fatalf("got %d resolved moves, want 2 (null move is not recorded as a Move)", len(cg.Moves))
	}
	if cg.Result != chess.UnknownResult {
		t.Errorf("Result = %v, want UnknownResult", cg.Result)
	}
}
