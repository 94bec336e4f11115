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

package pgnscan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScan_minimalGame(t *testing.T) {
	src := []byte("[Event \"x\"]\n\n1. e4 e5 1/2-1/2\n")

	var games []Game
	if err := Scan(src, func(g Game) { games = append(games, g) }); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	want := Game{Offset: 0, FEN: "", SAN: []string{"e4", "e5"}, Result: "1/2-1/2"}
	if diff := cmp.Diff(want, games[0]); diff != "" {
		t.Errorf("game mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_castleVsResultDisambiguation(t *testing.T) {
	src := []byte("[Event \"x\"]\n\n1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. O-O Be7 1-0\n")

	var games []Game
	if err := Scan(src, func(g Game) { games = append(games, g) }); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}

	const castleSan = "O-O"
	found := false
	for _, san := range games[0].SAN {
		if san == castleSan {
			found = true
		}
	}
	if !found {
		t.Errorf("SAN list %v does not contain %q", games[0].SAN, castleSan)
	}
	if games[0].Result != "1-0" {
		t.Errorf("Result = %q, want %q", games[0].Result, "1-0")
	}
}

func TestScan_missingResultRecovery(t *testing.T) {
	src := []byte("[Event \"a\"]\n\n1. e4 e5\n[Event \"b\"]\n\n1. d4 d5 1-0\n")

	var games []Game
	if err := Scan(src, func(g Game) { games = append(games, g) }); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	if len(games[0].SAN) != 2 {
		t.Errorf("first game SAN = %v, want 2 moves", games[0].SAN)
	}
	if games[1].Result != "1-0" {
		t.Errorf("second game result = %q, want %q", games[1].Result, "1-0")
	}
}

func TestScan_fenTag(t *testing.T) {
	src := []byte("[Event \"x\"]\n[FEN \"8/8/8/8/8/8/8/k6K b - - 0 1\"]\n\n1... Kb2 1/2-1/2\n")

	var games []Game
	if err := Scan(src, func(g Game) { games = append(games, g) }); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	if games[0].FEN != "8/8/8/8/8/8/8/k6K b - - 0 1" {
		t.Errorf("FEN = %q", games[0].FEN)
	}
}

func TestScan_resultWithInternalSpaces(t *testing.T) {
	src := []byte("[Event \"x\"]\n\n1. e4 e5 1/2 - 1/2\n")

	var games []Game
	if err := Scan(src, func(g Game) { games = append(games, g) }); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
}

func TestScan_trailingGameWithoutNewline(t *testing.T) {
	src := []byte("[Event \"x\"]\n\n1. e4 e5 1-0")

	var games []Game
	if err := Scan(src, func(g Game) { games = append(games, g) }); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	if games[0].Result != "1-0" {
		t.Errorf("Result = %q, want %q", games[0].Result, "1-0")
	}
}

func TestScan_nullMove(t *testing.T) {
	src := []byte("[Event \"x\"]\n\n1. e4 -- 2. Nf3 1-0\n")

	var games []Game
	if err := Scan(src, func(g Game) { games = append(games, g) }); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	want := []string{"e4", "--", "Nf3"}
	if diff := cmp.Diff(want, games[0].SAN); diff != "" {
		t.Errorf("SAN mismatch (-want +got):\n%s", diff)
	}
}
