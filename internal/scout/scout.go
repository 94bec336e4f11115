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

// Package scout shards a compiled binary database across a worker pool,
// replays each game's moves against a live chess.Position, and evaluates a
// compiled rule program at every half-move. Workers are coordinated with
// golang.org/x/sync/errgroup, each one owning a disjoint byte range of the
// database so no locking or coordination is needed between them while
// scanning.
package scout

import (
	"context"

	chess "github.com/brighamskarda/scoutfish"
	"github.com/brighamskarda/scoutfish/internal/dbio"
	"github.com/brighamskarda/scoutfish/internal/rules"
	"golang.org/x/sync/errgroup"
)

// Align is a standalone pure function so it can be tested independently of
// any worker or goroutine. Given an arbitrary byte offset start, it returns
// the offset of the next game record at or after start: always >= start,
// and always immediately following a separator record that marks a genuine
// game boundary, so a worker assigned [start, end) never begins mid-game.
//
// data[0:moveSize] is always a leading separator record, so the scan for
// "the preceding separator" never runs off the start of the slice.
func Align(data []byte, start int) int {
	if start <= 0 {
		return dbio.MoveSize
	}
	p := firstSeparatorAtOrAfter(data, start)
	if p < 0 {
		return len(data)
	}

	back := p - dbio.RecordHeaderSize + dbio.MoveSize
	if back < 0 {
		back = 0
	}
	p2 := firstSeparatorAtOrAfter(data, back)
	if p2 < 0 {
		return len(data)
	}
	return p2 + dbio.MoveSize
}

func firstSeparatorAtOrAfter(data []byte, from int) int {
	for i := from - (from % dbio.MoveSize); i+dbio.MoveSize <= len(data); i += dbio.MoveSize {
		if dbio.IsSeparator(data, i) {
			return i
		}
	}
	return -1
}

// Match is one query hit within one game: the game's source-PGN byte
// offset and the 1-based half-move index at which each condition of the
// query chain was satisfied.
type Match struct {
	Offset int64
	Plies  []int
}

// WorkerResult is what one worker accumulates over its byte range before
// joining. Each worker writes its own WorkerResult exactly once, after it
// has finished scanning its range, so the aggregator can read every
// worker's result without any synchronization beyond the errgroup join.
type WorkerResult struct {
	Matches   []Match
	MovesSeen int
	GamesSeen int
}

// Run shards data into numWorkers disjoint ranges, aligns each to a real
// game boundary, and scans every worker concurrently with conditions
// applied independently via a fresh rules.Engine per game. limit, if > 0,
// is a best-effort per-worker early-exit budget: once a worker's own match
// count reaches limit, it finishes its current game and stops, without
// signalling other workers, so the true total can still slightly exceed
// limit.
func Run(ctx context.Context, data []byte, conditions []rules.Condition, numWorkers int, limit int) ([]WorkerResult, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	total := len(data)
	shareSize := total / numWorkers

	results := make([]WorkerResult, numWorkers)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		i := i
		start := i * shareSize
		end := start + shareSize
		if i == numWorkers-1 {
			end = total
		}
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = scanRange(data, start, end, conditions, limit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// scanRange replays every whole game found in [start, end) of data,
// evaluating conditions against each half-move. A worker never stops
// mid-game: the boundary scan in Align always advances to a genuine
// separator, and the loop below always consumes a complete record before
// checking the end-of-range condition again.
func scanRange(data []byte, start, end int, conditions []rules.Condition, limit int) WorkerResult {
	var res WorkerResult
	if start >= len(data) {
		return res
	}

	off := Align(data, start)
	for off < end && off < len(data) {
		rec, next, err := dbio.ReadGame(data, off)
		if err != nil {
			break
		}
		off = next

		match, ok := scanGame(rec, conditions)
		res.GamesSeen++
		res.MovesSeen += len(rec.Moves)
		if ok {
			res.Matches = append(res.Matches, match)
			if limit > 0 && len(res.Matches) >= limit {
				break
			}
		}
	}
	return res
}

// scanGame replays rec's moves from the standard start position (games
// with a setup FEN are never written to the database) and drives a fresh
// rules.Engine ply by ply.
func scanGame(rec dbio.GameRecord, conditions []rules.Condition) (Match, bool) {
	pos := &chess.Position{}
	if err := pos.UnmarshalText([]byte(chess.DefaultFEN)); err != nil {
		panic("scout: chess.DefaultFEN failed to parse: " + err.Error())
	}

	engine := rules.NewEngine(conditions)

	for ply, em := range rec.Moves {
		ply := ply + 1
		if em.IsNull() {
			pos.SideToMove = opposite(pos.SideToMove)
			continue
		}

		m := em.Decode()
		ctx := buildEvalContext(pos, m, rec.Result, ply == len(rec.Moves))

		pos.Move(m)
		ctx.After = pos
		if ctx.IsLastMove {
			ctx.LegalReplyExists = len(chess.LegalMoves(pos)) > 0
		}

		matched, match, abort := engine.Ply(ply, ctx)
		if abort {
			return Match{}, false
		}
		if matched {
			return Match{Offset: rec.Offset, Plies: match.Plies}, true
		}
	}
	return Match{}, false
}

// buildEvalContext captures everything about one half-move that rule
// evaluation needs, using pos as it stands immediately before the move is
// applied (After is filled in by the caller once pos.Move has run).
func buildEvalContext(pos *chess.Position, m chess.Move, result chess.GameResult, isLastMove bool) *rules.EvalContext {
	mover := pos.SideToMove
	movedPiece := pos.Piece(m.FromSquare).Type
	captured := capturedPieceType(pos, m)

	before := pos.Copy()
	return &rules.EvalContext{
		Before:        before,
		Mover:         mover,
		Move:          m,
		MovedPiece:    movedPiece,
		CapturedPiece: captured,
		Result:        result,
		IsLastMove:    isLastMove,
	}
}

// capturedPieceType determines the piece type captured by m, if any,
// before m is applied. An en-passant capture is detected as a diagonal
// pawn move onto an empty square, and always reports chess.Pawn.
func capturedPieceType(pos *chess.Position, m chess.Move) chess.PieceType {
	dest := pos.Piece(m.ToSquare)
	if dest.Type != chess.NoPieceType {
		return dest.Type
	}
	moved := pos.Piece(m.FromSquare)
	if moved.Type == chess.Pawn && m.FromSquare.File != m.ToSquare.File {
		return chess.Pawn
	}
	return chess.NoPieceType
}

func opposite(c chess.Color) chess.Color {
	if c == chess.White {
		return chess.Black
	}
	return chess.White
}
