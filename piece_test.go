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

package chess

import "testing"

func TestNoPieceToString(t *testing.T) {
	pieceToTest := Piece{Color: NoColor, Type: NoPieceType}
	if pieceToTest.String() != "-" {
		t.Errorf("NoPiece does not equal \"-\", got %q", pieceToTest.String())
	}
}

func TestPieceToString(t *testing.T) {
	pieceToTest := Piece{Color: White, Type: Pawn}
	if pieceToTest.String() != "P" {
		t.Error("White pawn does not equal \"P\"")
	}

	pieceToTest.Color = Black
	if pieceToTest.String() != "p" {
		t.Error("Black pawn does not equal \"p\"")
	}

	pieceToTest.Type = Bishop
	if pieceToTest.String() != "b" {
		t.Error("Black bishop does not equal \"b\"")
	}
}

func TestParsePiece(t *testing.T) {
	testCases := []struct {
		in       string
		expected Piece
	}{
		{"P", WhitePawn},
		{"p", BlackPawn},
		{"N", WhiteKnight},
		{"b", BlackBishop},
		{"R", WhiteRook},
		{"q", BlackQueen},
		{"K", WhiteKing},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			actual, err := parsePiece(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if actual != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, actual)
			}
		})
	}
}

func TestParsePieceError(t *testing.T) {
	if _, err := parsePiece("x"); err == nil {
		t.Error("expected error for invalid piece letter")
	}
	if _, err := parsePiece(""); err == nil {
		t.Error("expected error for empty string")
	}
}
