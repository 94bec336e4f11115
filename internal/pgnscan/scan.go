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

// Package pgnscan tokenises arbitrarily malformed PGN text into games, each
// a setup FEN (if any) plus an ordered list of SAN move strings. It does
// not know how to resolve SAN against a position; that is internal/ingest's
// job. The scanner is a direct re-architecture of the Stockfish PGN
// state machine as a (state, token) -> action dispatch table, single-pass
// over the byte buffer with a bounded stack of saved states for nested
// tags/braces/variations/NAGs.
package pgnscan

import (
	"fmt"

	"github.com/brighamskarda/scoutfish/internal/pgntoken"
)

type state uint8

const (
	header state = iota
	tag
	fenTag
	braceComment
	variation
	nag
	nextMove
	moveNumber
	nextSan
	readSan
	result
	numStates
)

type action uint8

const (
	actContinue action = iota
	actFail
	actOpenTag
	actOpenBraceComment
	actReadFen
	actCloseFenTag
	actOpenVariation
	actStartNag
	actPopState
	actStartMoveNumber
	actStartNextSan
	actCastleOrResult
	actStartReadSan
	actReadMoveChar
	actEndMove
	actStartResult
	actEndGame
	actTagInBrace
	actMissingResult
)

var stepTable [numStates][pgntoken.NumTokens]action

func init() {
	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[header][tk] = actContinue
	}
	stepTable[header][pgntoken.LeftBracket] = actOpenTag
	stepTable[header][pgntoken.LeftBrace] = actOpenBraceComment
	stepTable[header][pgntoken.Digit] = actStartMoveNumber
	stepTable[header][pgntoken.Zero] = actStartResult
	stepTable[header][pgntoken.Result] = actStartResult

	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[tag][tk] = actContinue
	}
	stepTable[tag][pgntoken.RightBracket] = actPopState

	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[fenTag][tk] = actReadFen
	}
	stepTable[fenTag][pgntoken.Quotes] = actCloseFenTag

	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[braceComment][tk] = actContinue
	}
	stepTable[braceComment][pgntoken.RightBrace] = actPopState
	stepTable[braceComment][pgntoken.LeftBracket] = actTagInBrace

	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[variation][tk] = actContinue
	}
	stepTable[variation][pgntoken.RightParen] = actPopState
	stepTable[variation][pgntoken.LeftParen] = actOpenVariation
	stepTable[variation][pgntoken.LeftBrace] = actOpenBraceComment

	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[nag][tk] = actPopState
	}
	stepTable[nag][pgntoken.Zero] = actContinue
	stepTable[nag][pgntoken.Digit] = actContinue

	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[nextMove][tk] = actContinue
	}
	stepTable[nextMove][pgntoken.LeftParen] = actOpenVariation
	stepTable[nextMove][pgntoken.LeftBrace] = actOpenBraceComment
	stepTable[nextMove][pgntoken.LeftBracket] = actMissingResult
	stepTable[nextMove][pgntoken.Dollar] = actStartNag
	stepTable[nextMove][pgntoken.Result] = actStartResult
	stepTable[nextMove][pgntoken.Zero] = actStartResult
	stepTable[nextMove][pgntoken.Dot] = actFail
	stepTable[nextMove][pgntoken.MoveHead] = actFail
	stepTable[nextMove][pgntoken.Minus] = actFail
	stepTable[nextMove][pgntoken.Digit] = actStartMoveNumber

	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[moveNumber][tk] = actFail
	}
	stepTable[moveNumber][pgntoken.Zero] = actContinue
	stepTable[moveNumber][pgntoken.Digit] = actContinue
	stepTable[moveNumber][pgntoken.Result] = actStartResult
	stepTable[moveNumber][pgntoken.Minus] = actStartResult
	stepTable[moveNumber][pgntoken.Spaces] = actStartNextSan
	stepTable[moveNumber][pgntoken.Dot] = actStartNextSan

	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[nextSan][tk] = actContinue
	}
	stepTable[nextSan][pgntoken.LeftParen] = actOpenVariation
	stepTable[nextSan][pgntoken.LeftBrace] = actOpenBraceComment
	stepTable[nextSan][pgntoken.LeftBracket] = actMissingResult
	stepTable[nextSan][pgntoken.Dollar] = actStartNag
	stepTable[nextSan][pgntoken.Result] = actStartResult
	stepTable[nextSan][pgntoken.Zero] = actCastleOrResult
	stepTable[nextSan][pgntoken.Dot] = actContinue
	stepTable[nextSan][pgntoken.Digit] = actStartMoveNumber
	stepTable[nextSan][pgntoken.MoveHead] = actStartReadSan
	stepTable[nextSan][pgntoken.Minus] = actStartReadSan

	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[readSan][tk] = actReadMoveChar
	}
	stepTable[readSan][pgntoken.Spaces] = actEndMove
	stepTable[readSan][pgntoken.LeftBrace] = actOpenBraceComment

	for tk := pgntoken.Token(0); tk < pgntoken.NumTokens; tk++ {
		stepTable[result][tk] = actContinue
	}
	stepTable[result][pgntoken.Spaces] = actEndGame
}

// Game is one parsed PGN game: an optional setup FEN and its SAN move
// tokens in play order. Variations, comments, and NAGs are discarded;
// resolving SAN against a position happens downstream in internal/ingest.
type Game struct {
	// Offset is the byte position, within the scanned input, of the first
	// tag of this game (typically its "[Event " tag).
	Offset int
	// FEN is the setup position from a [FEN "..."] tag, or "" if the game
	// starts from the standard initial position.
	FEN string
	// SAN is the sequence of move tokens, one per half-move, in source
	// order. A null move is represented as "--".
	SAN []string
	// Result is the raw result token ("1-0", "0-1", "1/2-1/2", "*", or ""
	// if the game was force-flushed before a result token was read).
	Result string
}

// ErrHardFail is returned (wrapped with positional detail) when the
// scanner reaches a (state, token) pair with no recovery path: the caller
// should log it and abort the ingestion run.
type ErrHardFail struct {
	Offset int
	Window string
	State  string
}

func (e *ErrHardFail) Error() string {
	return fmt.Sprintf("pgnscan: malformed PGN at offset %d (state %s): %q", e.Offset, e.State, e.Window)
}

var stateNames = [numStates]string{
	header: "HEADER", tag: "TAG", fenTag: "FEN_TAG", braceComment: "BRACE_COMMENT",
	variation: "VARIATION", nag: "NAG", nextMove: "NEXT_MOVE", moveNumber: "MOVE_NUMBER",
	nextSan: "NEXT_SAN", readSan: "READ_SAN", result: "RESULT",
}

const maxStateStack = 16

// Handler is invoked once per game the scanner flushes, whether it ended
// cleanly with a result token or was force-flushed by a recovery path
// (missing result, missing closing brace, or EOF mid-game).
type Handler func(Game)

// Scan drives the PGN state machine over src, calling handle once for
// every game it flushes. It returns a non-nil *ErrHardFail only when an
// unrecoverable token/state combination is reached, which is a hard halt:
// the caller should abort the whole ingestion run.
func Scan(src []byte, handle Handler) error {
	var stack [maxStateStack]state
	sp := 0
	push := func(s state) error {
		if sp >= maxStateStack {
			return fmt.Errorf("pgnscan: state stack overflow (depth %d)", maxStateStack)
		}
		stack[sp] = s
		sp++
		return nil
	}
	pop := func() state {
		sp--
		return stack[sp]
	}

	st := header
	stm := 0 // 0 = white, 1 = black

	var fen []byte
	var sanBuf []byte
	var resultBuf []byte
	var sans []string
	gameStart := 0
	recordedStart := false

	resetGame := func() {
		fen = fen[:0]
		sanBuf = sanBuf[:0]
		resultBuf = resultBuf[:0]
		sans = nil
		recordedStart = false
		stm = 0
	}

	flush := func() {
		handle(Game{Offset: gameStart, FEN: string(fen), SAN: sans, Result: string(resultBuf)})
		resetGame()
	}

	i := 0
	for i < len(src) {
		tk := pgntoken.Classify(src[i])
		act := stepTable[st][tk]

		switch act {
		case actFail:
			lo, hi := i-25, i+25
			if lo < 0 {
				lo = 0
			}
			if hi > len(src) {
				hi = len(src)
			}
			return &ErrHardFail{Offset: i, Window: string(src[lo:hi]), State: stateNames[st]}

		case actContinue:
			if st == moveNumber || st == result {
				resultBuf = append(resultBuf, src[i])
			}

		case actOpenTag:
			if err := push(st); err != nil {
				return err
			}
			if !recordedStart {
				gameStart = i
				recordedStart = true
			}
			if matchesFenTagOpen(src, i) {
				i += 6 // consume "[FEN \"" up through the opening quote
				st = fenTag
				continue
			}
			st = tag

		case actOpenBraceComment:
			if err := push(st); err != nil {
				return err
			}
			st = braceComment

		case actReadFen:
			fen = append(fen, src[i])

		case actCloseFenTag:
			st = tag
			if containsSideToMoveBlack(fen) {
				stm = 1
			}

		case actOpenVariation:
			if err := push(st); err != nil {
				return err
			}
			st = variation

		case actStartNag:
			if err := push(st); err != nil {
				return err
			}
			st = nag

		case actPopState:
			st = pop()

		case actStartMoveNumber:
			resultBuf = resultBuf[:0]
			resultBuf = append(resultBuf, src[i])
			st = moveNumber

		case actStartNextSan:
			resultBuf = resultBuf[:0]
			st = nextSan

		case actCastleOrResult:
			if i+2 >= len(src) || src[i+2] != '0' {
				st = result
				continue
			}
			sanBuf = append(sanBuf, src[i])
			st = readSan

		case actStartReadSan:
			sanBuf = append(sanBuf, src[i])
			st = readSan

		case actReadMoveChar:
			sanBuf = append(sanBuf, src[i])

		case actEndMove:
			sans = append(sans, string(sanBuf))
			sanBuf = sanBuf[:0]
			if stm == 0 {
				st = nextSan
			} else {
				st = nextMove
			}
			stm ^= 1

		case actStartResult:
			resultBuf = append(resultBuf, src[i])
			st = result

		case actEndGame:
			if src[i] != '\n' {
				// Internal whitespace inside a result like "1/2 - 1/2":
				// stay in RESULT and keep scanning, but do not swallow the
				// separator byte into the result text.
				st = result
				break
			}
			flush()
			st = header

		case actTagInBrace:
			if !matchesEventTag(src, i) {
				break
			}
			flush()
			if err := push(header); err != nil {
				return err
			}
			gameStart = i
			recordedStart = true
			st = tag

		case actMissingResult:
			flush()
			if err := push(header); err != nil {
				return err
			}
			gameStart = i
			recordedStart = true
			st = tag
		}

		i++
	}

	if st != header && (len(sans) > 0 || len(fen) > 0 || sanBuf != nil) {
		flush()
	}
	return nil
}

func matchesFenTagOpen(src []byte, i int) bool {
	const want = "[FEN \""
	if i+len(want) > len(src) {
		return false
	}
	return string(src[i:i+len(want)]) == want
}

func matchesEventTag(src []byte, i int) bool {
	const want = "[Event "
	if i+len(want) > len(src) {
		return false
	}
	return string(src[i:i+len(want)]) == want
}

func containsSideToMoveBlack(fen []byte) bool {
	s := string(fen)
	for i := 0; i+3 <= len(s); i++ {
		if s[i] == ' ' && s[i+1] == 'b' && s[i+2] == ' ' {
			return true
		}
	}
	return false
}
