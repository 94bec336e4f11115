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

// Package rules evaluates a compiled query program against a game replayed
// half-move by half-move. internal/query builds the []Condition; Engine
// drives the per-ply conjunction and streak/sequence bookkeeping, with
// every decision expressed as an explicit branch rather than any
// goto-style control flow.
package rules

import (
	chess "github.com/brighamskarda/scoutfish"
)

// Opcode is one rule evaluated against a half-move.
type Opcode uint8

const (
	RuleNone Opcode = iota
	RulePass
	RuleResult
	RuleResultType
	RuleSubFen
	RuleMaterial
	RuleImbalance
	RuleMove
	RuleQuietMove
	RuleCapturedPiece
	RuleMovedPiece
	RuleWhite
	RuleBlack
	RuleMatchedCondition
	RuleMatchedQuery
)

// ResultType is the end-of-game condition RuleResultType checks for.
type ResultType uint8

const (
	ResultTypeNone ResultType = iota
	ResultTypeMate
	ResultTypeStalemate
)

// SubFen is a sparse board pattern: white and black occupancy bitboards,
// plus a list of required piece placements. A position matches iff every
// listed bitboard is a subset of the corresponding occupancy bitboard in
// the live position.
type SubFen struct {
	White  chess.Bitboard
	Black  chess.Bitboard
	Pieces []PiecePlacement
}

// PiecePlacement requires pieces of Type to occupy (at least) the squares
// set in Bitboard.
type PiecePlacement struct {
	Type     chess.PieceType
	Bitboard chess.Bitboard
}

// ScoutMove is a move constraint: piece, destination, optional
// disambiguation, promotion piece type, and castle flag. Disambiguation is
// 0 for none, 1+file for a file constraint, or 9+rank for a rank
// constraint, matching the SAN-like move-constraint grammar the query
// compiler parses.
type ScoutMove struct {
	Piece          chess.PieceType
	Dest           chess.Square
	Disambiguation int
	Promotion      chess.PieceType
	Castle         bool
}

// Condition is a conjunction of rules, evaluated in order against a single
// half-move. Its Rules slice always ends with exactly one of RuleNone (the
// empty/standalone "matches nothing" condition), RuleMatchedCondition, or
// RuleMatchedQuery.
type Condition struct {
	Rules []Opcode

	Results      []chess.GameResult
	ResultType   ResultType
	SubFens      []SubFen
	MaterialKeys []chess.MaterialKey
	Imbalances   []chess.Imbalance

	Moves       []ScoutMove
	MoveSquares chess.Bitboard

	MovedFlags    PieceTypeSet
	CapturedFlags PieceTypeSet

	// StreakID is 0 for a standalone or sequence-member condition, and a
	// shared positive id for conditions that must match on consecutive
	// half-moves of the same game.
	StreakID int
}

// PieceTypeSet is a bitmask over chess.PieceType values (Pawn..King), used
// for the `moved` and `captured` rule keys.
type PieceTypeSet uint8

// PieceTypeBit returns the mask bit for pt. NoPieceType (the "quiet move" sentinel
// for `captured`) maps to its own bit rather than 0, so an explicitly
// requested empty capture set is distinguishable from "rule absent".
func PieceTypeBit(pt chess.PieceType) PieceTypeSet {
	return 1 << PieceTypeSet(pt)
}

// Contains reports whether pt's bit is set in s.
func (s PieceTypeSet) Contains(pt chess.PieceType) bool {
	return s&PieceTypeBit(pt) != 0
}

// EvalContext is everything the rule interpreter needs about one replayed
// half-move: the position before and after the move, the move itself, and
// end-of-game facts. It is built after the move has been applied, so
// Move, MovedPiece, and CapturedPiece all describe the move just played.
type EvalContext struct {
	Before *chess.Position
	After  *chess.Position
	Mover  chess.Color
	Move   chess.Move

	MovedPiece    chess.PieceType
	CapturedPiece chess.PieceType // NoPieceType for a quiet move; pawn for en passant

	Result chess.GameResult

	IsLastMove       bool
	LegalReplyExists bool
}

func pieceBitboardOf(pos *chess.Position, c chess.Color, pt chess.PieceType) chess.Bitboard {
	return pos.Bitboard(chess.Piece{Color: c, Type: pt})
}

func subFenMatches(sf SubFen, pos *chess.Position) bool {
	white := pos.ColorBitboard(chess.White)
	black := pos.ColorBitboard(chess.Black)
	if sf.White != 0 && sf.White&^white != 0 {
		return false
	}
	if sf.Black != 0 && sf.Black&^black != 0 {
		return false
	}
	for _, pp := range sf.Pieces {
		var placed chess.Bitboard
		placed |= pieceBitboardOf(pos, chess.White, pp.Type)
		placed |= pieceBitboardOf(pos, chess.Black, pp.Type)
		if pp.Bitboard&^placed != 0 {
			return false
		}
	}
	return true
}

func scoutMoveMatches(sm ScoutMove, ctx *EvalContext) bool {
	if sm.Dest != ctx.Move.ToSquare {
		return false
	}
	if sm.Castle {
		return isCastleMove(ctx)
	}
	if sm.Piece != chess.NoPieceType && sm.Piece != ctx.MovedPiece {
		return false
	}
	if sm.Promotion != chess.NoPieceType && sm.Promotion != ctx.Move.Promotion {
		return false
	}
	if sm.Disambiguation == 0 {
		return true
	}
	if sm.Disambiguation <= 8 {
		wantFile := chess.File(sm.Disambiguation)
		return ctx.Move.FromSquare.File == wantFile
	}
	wantRank := chess.Rank(sm.Disambiguation - 8)
	return ctx.Move.FromSquare.Rank == wantRank
}

func isCastleMove(ctx *EvalContext) bool {
	if ctx.MovedPiece != chess.King {
		return false
	}
	df := int(ctx.Move.FromSquare.File) - int(ctx.Move.ToSquare.File)
	return df > 1 || df < -1
}

func evalOpcode(op Opcode, cond *Condition, ctx *EvalContext) bool {
	switch op {
	case RulePass:
		return true
	case RuleResult:
		return resultInSet(cond.Results, ctx.Result)
	case RuleResultType:
		if !ctx.IsLastMove || ctx.LegalReplyExists {
			return false
		}
		inCheck := ctx.After.IsCheck()
		switch cond.ResultType {
		case ResultTypeMate:
			return inCheck
		case ResultTypeStalemate:
			return !inCheck
		default:
			return false
		}
	case RuleSubFen:
		for _, sf := range cond.SubFens {
			if subFenMatches(sf, ctx.After) {
				return true
			}
		}
		return false
	case RuleMaterial:
		key := ctx.After.MaterialKey()
		for _, k := range cond.MaterialKeys {
			if k == key {
				return true
			}
		}
		return false
	case RuleImbalance:
		imb := ctx.After.Imbalance()
		for _, want := range cond.Imbalances {
			if want == imb {
				return true
			}
		}
		return false
	case RuleMove:
		if cond.MoveSquares.Square(ctx.Move.ToSquare) == 0 {
			return false
		}
		for _, sm := range cond.Moves {
			if scoutMoveMatches(sm, ctx) {
				return true
			}
		}
		return false
	case RuleQuietMove:
		return ctx.CapturedPiece == chess.NoPieceType
	case RuleCapturedPiece:
		return cond.CapturedFlags.Contains(ctx.CapturedPiece)
	case RuleMovedPiece:
		return cond.MovedFlags.Contains(ctx.MovedPiece)
	case RuleWhite:
		return ctx.Mover == chess.White
	case RuleBlack:
		return ctx.Mover == chess.Black
	default:
		return false
	}
}

func resultInSet(set []chess.GameResult, r chess.GameResult) bool {
	for _, want := range set {
		if want == r {
			return true
		}
	}
	return false
}

// resultDefinitelyExcluded reports whether ctx.Result can never satisfy
// cond's RuleResult set, letting the engine short-circuit the rest of the
// game instead of evaluating every remaining ply. The game's recorded
// result is known up front (it is replayed from a finished game record),
// so "incompatible" here means simply "not in the set".
func resultDefinitelyExcluded(cond *Condition, ctx *EvalContext) bool {
	return len(cond.Results) > 0 && !resultInSet(cond.Results, ctx.Result)
}

// EvalCondition evaluates every rule in cond, in order, against ctx. It
// returns matched == true and the terminating opcode only if every rule
// before the terminator succeeded. abortGame reports whether the failure
// was a RuleResult short-circuit.
func EvalCondition(cond *Condition, ctx *EvalContext) (matched bool, terminal Opcode, abortGame bool) {
	for _, op := range cond.Rules {
		switch op {
		case RuleNone:
			return false, 0, false
		case RuleMatchedCondition, RuleMatchedQuery:
			return true, op, false
		default:
			if !evalOpcode(op, cond, ctx) {
				if op == RuleResult && resultDefinitelyExcluded(cond, ctx) {
					return false, 0, true
				}
				return false, 0, false
			}
		}
	}
	return false, 0, false
}

// MatchingGame records, for a query match, the game's PGN byte offset and
// the ply at which each condition in the chain was satisfied.
type MatchingGame struct {
	GameOffset int64
	Plies      []int
}

// Engine drives a compiled condition chain across the half-moves of one
// game. The zero value is not usable; use NewEngine.
type Engine struct {
	conditions []Condition
	idx        int
	plies      []int
}

// NewEngine creates an Engine for one game replay over conditions.
func NewEngine(conditions []Condition) *Engine {
	return &Engine{conditions: conditions}
}

// Ply evaluates one half-move (ply is the 1-based half-move index within
// the game) against the engine's current condition. If the whole query
// chain completes, matched is true and match holds the recorded plies;
// the caller must then stop replaying this game, since the remainder
// cannot add anything to an already-recorded match. abortGame reports a
// RuleResult short-circuit: the caller should stop replaying this game
// without a match.
func (e *Engine) Ply(ply int, ctx *EvalContext) (matched bool, match MatchingGame, abortGame bool) {
	if e.idx >= len(e.conditions) {
		return false, MatchingGame{}, false
	}

	cond := &e.conditions[e.idx]
	if cond.StreakID > 0 && len(e.plies) > 0 && ply-e.plies[len(e.plies)-1] > 1 {
		// Streak contiguity broken: restart the whole chain. Checked
		// before every half-move so a gap anywhere in a streak resets it.
		e.idx = 0
		e.plies = nil
		cond = &e.conditions[e.idx]
	}

	ok, terminal, abort := EvalCondition(cond, ctx)
	if abort {
		return false, MatchingGame{}, true
	}
	if !ok {
		return false, MatchingGame{}, false
	}

	e.plies = append(e.plies, ply)
	if terminal == RuleMatchedQuery {
		plies := make([]int, len(e.plies))
		copy(plies, e.plies)
		return true, MatchingGame{Plies: plies}, false
	}
	e.idx++
	return false, MatchingGame{}, false
}
