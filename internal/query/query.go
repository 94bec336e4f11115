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

// Package query compiles a JSON query document into the linear rule
// program internal/rules interprets. Documents are loosely structured and
// accept string-or-array values almost everywhere, so this package decodes
// into map[string]any/[]any via encoding/json and walks the tree directly,
// with no intermediate schema struct.
package query

import (
	"encoding/json"
	"fmt"
	"strings"

	chess "github.com/brighamskarda/scoutfish"
	"github.com/brighamskarda/scoutfish/internal/rules"
)

// Query is a compiled scout query: an ordered condition chain plus the
// result-window parameters.
type Query struct {
	Conditions []rules.Condition
	Skip       int
	Limit      int
}

// Compile parses a JSON query document and builds its condition chain.
// Unrecognised top-level keys and unrecognised rule values are ignored
// silently rather than rejected, so older and newer query documents stay
// forward- and backward-compatible with this compiler.
func Compile(data []byte) (*Query, error) {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("query: invalid JSON: %w", err)
	}
	root, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("query: root must be a JSON object")
	}

	q := &Query{
		Skip:  intField(root, "skip"),
		Limit: intField(root, "limit"),
	}

	nextStreakID := 1
	switch {
	case root["sequence"] != nil:
		items, _ := root["sequence"].([]any)
		for _, item := range items {
			q.Conditions = append(q.Conditions, compileSequenceItem(item, &nextStreakID)...)
		}
	case root["streak"] != nil:
		items, _ := root["streak"].([]any)
		q.Conditions = append(q.Conditions, compileStreak(items, &nextStreakID)...)
	default:
		q.Conditions = append(q.Conditions, compileCondition(root))
	}

	if len(q.Conditions) == 0 {
		q.Conditions = []rules.Condition{{Rules: []rules.Opcode{rules.RuleNone}}}
		return q, nil
	}

	last := &q.Conditions[len(q.Conditions)-1]
	if n := len(last.Rules); last.Rules[n-1] == rules.RuleMatchedCondition {
		last.Rules[n-1] = rules.RuleMatchedQuery
	}
	return q, nil
}

func compileSequenceItem(item any, nextStreakID *int) []rules.Condition {
	m, ok := item.(map[string]any)
	if !ok {
		return nil
	}
	if streak, ok := m["streak"].([]any); ok {
		return compileStreak(streak, nextStreakID)
	}
	return []rules.Condition{compileCondition(m)}
}

func compileStreak(items []any, nextStreakID *int) []rules.Condition {
	id := *nextStreakID
	*nextStreakID++
	var out []rules.Condition
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c := compileCondition(m)
		c.StreakID = id
		out = append(out, c)
	}
	return out
}

// compileCondition builds one Condition from a rule-key map, appending
// opcodes in a fixed evaluation order. The terminator is always
// RuleMatchedCondition here; Compile rewrites the final condition's
// terminator to RuleMatchedQuery once the whole chain is built.
func compileCondition(m map[string]any) rules.Condition {
	var c rules.Condition

	if v, ok := m["result"]; ok {
		if results := parseResultSet(v); len(results) > 0 {
			c.Results = results
			c.Rules = append(c.Rules, rules.RuleResult)
		}
	}
	if v, ok := m["result-type"]; ok {
		if rt, ok := parseResultType(v); ok {
			c.ResultType = rt
			c.Rules = append(c.Rules, rules.RuleResultType)
		}
	}
	if v, ok := m["sub-fen"]; ok {
		if sfs := parseSubFenSet(v); len(sfs) > 0 {
			c.SubFens = sfs
			c.Rules = append(c.Rules, rules.RuleSubFen)
		}
	}
	if v, ok := m["material"]; ok {
		if keys := parseMaterialSet(v); len(keys) > 0 {
			c.MaterialKeys = keys
			c.Rules = append(c.Rules, rules.RuleMaterial)
		}
	}
	if v, ok := m["imbalance"]; ok {
		if imbs := parseImbalanceSet(v); len(imbs) > 0 {
			c.Imbalances = imbs
			c.Rules = append(c.Rules, rules.RuleImbalance)
		}
	}
	whiteMoves := parseMoveSet(m["white-move"], true)
	blackMoves := parseMoveSet(m["black-move"], false)
	if len(whiteMoves)+len(blackMoves) > 0 {
		c.Moves = append(whiteMoves, blackMoves...)
		for _, sm := range c.Moves {
			c.MoveSquares = c.MoveSquares.SetSquare(sm.Dest)
		}
		c.Rules = append(c.Rules, rules.RuleMove)
	}
	if v, ok := m["captured"]; ok {
		c.CapturedFlags = parsePieceTypeSet(v)
		c.Rules = append(c.Rules, rules.RuleCapturedPiece)
	}
	if v, ok := m["moved"]; ok {
		if set := parsePieceTypeSet(v); set != 0 {
			c.MovedFlags = set
			c.Rules = append(c.Rules, rules.RuleMovedPiece)
		}
	}
	if v, ok := m["stm"].(string); ok {
		switch strings.ToLower(v) {
		case "white":
			c.Rules = append(c.Rules, rules.RuleWhite)
		case "black":
			c.Rules = append(c.Rules, rules.RuleBlack)
		}
	}
	if _, ok := m["pass"]; ok {
		c.Rules = append(c.Rules, rules.RulePass)
	}

	if len(c.Rules) == 0 {
		c.Rules = []rules.Opcode{rules.RuleNone}
		return c
	}

	c.Rules = append(c.Rules, rules.RuleMatchedCondition)
	return c
}

func intField(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return int(f)
}

func parseResultSet(v any) []chess.GameResult {
	var tokens []string
	switch t := v.(type) {
	case string:
		tokens = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				tokens = append(tokens, s)
			}
		}
	}
	var out []chess.GameResult
	for _, tok := range tokens {
		r := chess.ParseGameResult(tok)
		if r != chess.InvalidResult {
			out = append(out, r)
		}
	}
	return out
}

func parseResultType(v any) (rules.ResultType, bool) {
	s, ok := v.(string)
	if !ok {
		return rules.ResultTypeNone, false
	}
	switch strings.ToLower(s) {
	case "mate", "checkmate":
		return rules.ResultTypeMate, true
	case "stalemate":
		return rules.ResultTypeStalemate, true
	default:
		return rules.ResultTypeNone, false
	}
}

func parseSubFenSet(v any) []rules.SubFen {
	var boards []string
	switch t := v.(type) {
	case string:
		boards = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				boards = append(boards, s)
			}
		}
	}
	var out []rules.SubFen
	for _, b := range boards {
		sf, err := parseSubFenBoard(b)
		if err != nil {
			continue
		}
		out = append(out, sf)
	}
	return out
}

func parseSubFenBoard(board string) (rules.SubFen, error) {
	ranks := strings.Split(board, "/")
	if len(ranks) != 8 {
		return rules.SubFen{}, fmt.Errorf("query: sub-fen board must have 8 ranks, got %d", len(ranks))
	}

	var white, black chess.Bitboard
	placements := map[chess.PieceType]chess.Bitboard{}

	for i, rankStr := range ranks {
		rank := chess.Rank(8 - i)
		file := 0
		for _, ch := range []byte(rankStr) {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file > 7 {
				return rules.SubFen{}, fmt.Errorf("query: sub-fen rank %q overflows 8 files", rankStr)
			}
			sq := chess.Square{File: chess.File(file + 1), Rank: rank}
			pt, color, err := pieceLetterToTypeColor(ch)
			if err != nil {
				return rules.SubFen{}, fmt.Errorf("query: sub-fen: %w", err)
			}
			placements[pt] = placements[pt].SetSquare(sq)
			if color == chess.White {
				white = white.SetSquare(sq)
			} else {
				black = black.SetSquare(sq)
			}
			file++
		}
	}

	sf := rules.SubFen{White: white, Black: black}
	for pt, bb := range placements {
		sf.Pieces = append(sf.Pieces, rules.PiecePlacement{Type: pt, Bitboard: bb})
	}
	return sf, nil
}

func pieceLetterToTypeColor(ch byte) (chess.PieceType, chess.Color, error) {
	color := chess.White
	lower := ch
	if ch >= 'a' && ch <= 'z' {
		color = chess.Black
	} else {
		lower = ch + ('a' - 'A')
	}
	switch lower {
	case 'p':
		return chess.Pawn, color, nil
	case 'n':
		return chess.Knight, color, nil
	case 'b':
		return chess.Bishop, color, nil
	case 'r':
		return chess.Rook, color, nil
	case 'q':
		return chess.Queen, color, nil
	case 'k':
		return chess.King, color, nil
	default:
		return chess.NoPieceType, chess.NoColor, fmt.Errorf("unknown piece letter %q", string(ch))
	}
}

// parseMaterialSet parses one or more material signatures of the form
// "<white pieces>v<black pieces>", e.g. "QRvR" (white queen+rook vs black
// rook), using the same piece-letter vocabulary as sub-fen boards.
func parseMaterialSet(v any) []chess.MaterialKey {
	var sigs []string
	switch t := v.(type) {
	case string:
		sigs = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				sigs = append(sigs, s)
			}
		}
	}
	var out []chess.MaterialKey
	for _, sig := range sigs {
		key, err := parseMaterialSignature(sig)
		if err != nil {
			continue
		}
		out = append(out, key)
	}
	return out
}

func parseMaterialSignature(sig string) (chess.MaterialKey, error) {
	parts := strings.SplitN(sig, "v", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("query: material signature %q missing 'v' separator", sig)
	}
	white, err := countPieceLetters(parts[0])
	if err != nil {
		return 0, err
	}
	black, err := countPieceLetters(parts[1])
	if err != nil {
		return 0, err
	}
	return chess.ComposeMaterialKey(white, black), nil
}

func countPieceLetters(s string) (map[chess.PieceType]int, error) {
	counts := map[chess.PieceType]int{}
	for i := 0; i < len(s); i++ {
		pt, _, err := pieceLetterToTypeColor(toUpper(s[i]))
		if err != nil {
			return nil, fmt.Errorf("query: material signature: %w", err)
		}
		counts[pt]++
	}
	return counts, nil
}

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// parseImbalanceSet parses codes like "RBvNP": letters before 'v' are
// material white has that black lacks, letters after are material black
// has that white lacks.
func parseImbalanceSet(v any) []chess.Imbalance {
	var codes []string
	switch t := v.(type) {
	case string:
		codes = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				codes = append(codes, s)
			}
		}
	}
	var out []chess.Imbalance
	for _, code := range codes {
		imb, err := parseImbalanceCode(code)
		if err != nil {
			continue
		}
		out = append(out, imb)
	}
	return out
}

func parseImbalanceCode(code string) (chess.Imbalance, error) {
	parts := strings.SplitN(code, "v", 2)
	if len(parts) != 2 {
		return chess.Imbalance{}, fmt.Errorf("query: imbalance code %q missing 'v' separator", code)
	}
	plus, err := countPieceLetters(parts[0])
	if err != nil {
		return chess.Imbalance{}, err
	}
	minus, err := countPieceLetters(parts[1])
	if err != nil {
		return chess.Imbalance{}, err
	}
	nonPawnValue := func(pt chess.PieceType) int {
		switch pt {
		case chess.Knight, chess.Bishop:
			return 3
		case chess.Rook:
			return 5
		case chess.Queen:
			return 9
		default:
			return 0
		}
	}
	var nonPawnDiff, pawnDiff int
	for pt, n := range plus {
		if pt == chess.Pawn {
			pawnDiff += n
		} else {
			nonPawnDiff += n * nonPawnValue(pt)
		}
	}
	for pt, n := range minus {
		if pt == chess.Pawn {
			pawnDiff -= n
		} else {
			nonPawnDiff -= n * nonPawnValue(pt)
		}
	}
	return chess.Imbalance{NonPawnMaterialDiff: nonPawnDiff, PawnCountDiff: pawnDiff}, nil
}

func parseMoveSet(v any, whiteToMove bool) []rules.ScoutMove {
	if v == nil {
		return nil
	}
	var sans []string
	switch t := v.(type) {
	case string:
		sans = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				sans = append(sans, s)
			}
		}
	}
	var out []rules.ScoutMove
	for _, san := range sans {
		sm, err := parseScoutMove(san, whiteToMove)
		if err != nil {
			continue
		}
		out = append(out, sm)
	}
	return out
}

// parseScoutMove parses a SAN-like move constraint: optional piece letter,
// optional disambiguation file/rank, destination square, optional
// promotion suffix, or a castling token ("O-O"/"O-O-O").
func parseScoutMove(san string, whiteToMove bool) (rules.ScoutMove, error) {
	san = strings.TrimRight(san, "+#")
	if san == "" {
		return rules.ScoutMove{}, fmt.Errorf("query: empty move constraint")
	}

	if san[0] == 'O' || san[0] == 'o' {
		kingside := !strings.Contains(strings.ToUpper(san), "O-O-O")
		var dest chess.Square
		switch {
		case whiteToMove && kingside:
			dest = chess.G1
		case whiteToMove && !kingside:
			dest = chess.C1
		case !whiteToMove && kingside:
			dest = chess.G8
		default:
			dest = chess.C8
		}
		return rules.ScoutMove{Castle: true, Piece: chess.King, Dest: dest}, nil
	}

	promo := chess.NoPieceType
	if idx := strings.IndexByte(san, '='); idx >= 0 {
		if idx+1 >= len(san) {
			return rules.ScoutMove{}, fmt.Errorf("query: move constraint %q has empty promotion", san)
		}
		pt, _, err := pieceLetterToTypeColor(toUpper(san[idx+1]))
		if err != nil {
			return rules.ScoutMove{}, fmt.Errorf("query: move constraint %q: %w", san, err)
		}
		promo = pt
		san = san[:idx]
	}

	if len(san) < 2 {
		return rules.ScoutMove{}, fmt.Errorf("query: move constraint %q too short", san)
	}

	destStr := san[len(san)-2:]
	sq := &chess.Square{}
	if err := sq.UnmarshalText([]byte(destStr)); err != nil {
		return rules.ScoutMove{}, fmt.Errorf("query: invalid destination square in %q: %w", san, err)
	}

	lead := san[0]
	if lead >= 'a' && lead <= 'h' {
		return rules.ScoutMove{Piece: chess.Pawn, Dest: *sq, Promotion: promo}, nil
	}

	piece, _, err := pieceLetterToTypeColor(lead)
	if err != nil || piece == chess.Pawn {
		return rules.ScoutMove{}, fmt.Errorf("query: unknown piece in move constraint %q", san)
	}

	disambig := 0
	if len(san) >= 4 {
		d := san[len(san)-3]
		switch {
		case d >= 'a' && d <= 'h':
			disambig = 1 + int(d-'a')
		case d >= '1' && d <= '8':
			disambig = 9 + int(d-'1')
		}
	}

	return rules.ScoutMove{Piece: piece, Dest: *sq, Disambiguation: disambig, Promotion: promo}, nil
}

func parsePieceTypeSet(v any) rules.PieceTypeSet {
	var letters string
	switch t := v.(type) {
	case string:
		letters = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				letters += s
			}
		}
	}
	var set rules.PieceTypeSet
	if letters == "" {
		// An explicitly empty set (e.g. "captured": "") means "quiet
		// move": match NoPieceType, not "no rule at all".
		return rules.PieceTypeBit(chess.NoPieceType)
	}
	for i := 0; i < len(letters); i++ {
		pt, _, err := pieceLetterToTypeColor(toUpper(letters[i]))
		if err != nil {
			continue
		}
		set |= rules.PieceTypeBit(pt)
	}
	return set
}
