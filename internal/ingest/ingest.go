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

// Package ingest resolves the SAN move sequences internal/pgnscan extracts
// against a chess position, yielding the encoded move records that
// internal/dbio writes to the binary database. A chess.Position replays
// every SAN in order, truncating the game at the first move it cannot
// resolve.
package ingest

import (
	"log"
	"strings"

	"github.com/brighamskarda/scoutfish"
	"github.com/brighamskarda/scoutfish/internal/pgnscan"
)

// CompiledGame is one game ready to be written to the binary database.
type CompiledGame struct {
	// Offset is the byte offset of the game's start tag in the source PGN.
	Offset int64
	Result chess.GameResult
	Moves  []chess.Move
}

// Stats accumulates the counters make-db reports: total games ingested,
// total half-moves written, and SAN strings whose resolution required
// the chess library to correct an ambiguity the raw notation did not
// fully spell out (the "fixed" counter).
type Stats struct {
	Games  int
	Moves  int
	Fixed  int
	Warned int
}

// Compile replays g's SAN moves against the standard starting position (or
// g.FEN, if present) and returns the resulting game record. Games whose
// setup FEN is non-empty are fully validated but return ok == false, since
// the binary DB's offset-relative layout has no room to record a setup
// position: the caller must not write them.
//
// A SAN string that cannot be resolved truncates the game at that point;
// Compile logs a warning naming the position and the offending token and
// returns the partial game with ok == true so ingestion can continue with
// the next game.
func Compile(g pgnscan.Game, stats *Stats) (cg CompiledGame, ok bool) {
	pos := &chess.Position{}
	if g.FEN != "" {
		if err := pos.UnmarshalText([]byte(g.FEN)); err != nil {
			log.Printf("ingest: game at offset %d: invalid FEN %q: %v", g.Offset, g.FEN, err)
			return CompiledGame{}, false
		}
	} else if err := pos.UnmarshalText([]byte(chess.DefaultFEN)); err != nil {
		panic("ingest: chess.DefaultFEN failed to parse: " + err.Error())
	}

	moves := make([]chess.Move, 0, len(g.SAN))
	for _, san := range g.SAN {
		if san == "--" {
			// MOVE_NULL: advances side to move without touching pieces.
			pos.SideToMove = opposite(pos.SideToMove)
			continue
		}

		m, err := chess.ParseSANMove(san, pos)
		if err != nil {
			log.Printf("ingest: game at offset %d: could not resolve SAN %q at ply %d: %v",
				g.Offset, san, len(moves)+1, err)
			stats.Warned++
			break
		}
		if sanIsAmbiguousWithoutLibraryHelp(san, m, pos) {
			stats.Fixed++
		}
		pos.Move(m)
		moves = append(moves, m)
	}

	stats.Games++
	stats.Moves += len(moves)

	if g.FEN != "" {
		return CompiledGame{}, false
	}

	return CompiledGame{
		Offset: int64(g.Offset),
		Result: chess.ParseGameResult(g.Result),
		Moves:  moves,
	}, true
}

// sanIsAmbiguousWithoutLibraryHelp reports whether san, as written, omits
// enough information that more than one legal move shares the resolved
// move's piece type and destination square — i.e. san_to_move had to use
// check/pin legality (not merely disambiguation characters already present
// in the string) to arrive at a unique move.
func sanIsAmbiguousWithoutLibraryHelp(san string, resolved chess.Move, before *chess.Position) bool {
	if strings.ContainsAny(san, "12345678") && len(san) >= 3 {
		// A rank or file disambiguation character was already present in
		// the SAN (anywhere before the destination square); the library
		// didn't need to correct anything.
		trimmed := strings.TrimRight(san, "+#")
		if len(trimmed) >= 4 && isDisambiguated(trimmed) {
			return false
		}
	}

	movedPiece := before.Piece(resolved.FromSquare)
	candidates := 0
	for _, m := range chess.LegalMoves(before) {
		if m.ToSquare != resolved.ToSquare {
			continue
		}
		if before.Piece(m.FromSquare) != movedPiece {
			continue
		}
		candidates++
	}
	return candidates > 1
}

// isDisambiguated reports whether a non-pawn SAN move string already
// encodes an origin file or rank before its destination square, e.g.
// "Nbd7" or "R1e2".
func isDisambiguated(san string) bool {
	if san == "" || san[0] < 'A' || san[0] > 'Z' {
		return false
	}
	body := san[1:]
	if len(body) < 3 {
		return false
	}
	lead := body[0]
	return (lead >= 'a' && lead <= 'h') || (lead >= '1' && lead <= '8')
}

// opposite returns the other side to move; chess.Color has no method for
// this since only positions (not bare colors) flip side to move elsewhere
// in the chess package.
func opposite(c chess.Color) chess.Color {
	if c == chess.White {
		return chess.Black
	}
	return chess.White
}
