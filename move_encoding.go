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

// EncodedMove is the packed 16-bit on-disk representation of a Move: bits
// 0-5 hold the to-square index, bits 6-11 the from-square index, and bits
// 12-14 the promotion piece type. This mirrors the bit layout used by
// Polyglot-style opening books, adapted here as the database's move slot.
//
// MoveNone is the game separator: every record in the binary database
// begins and ends with it, and it can never be produced by EncodeMove for a
// legal move since from == to is not a legal move. MoveNull represents the
// null move (SAN "--") and is distinguished from MoveNone by its from/to
// fields both being square 63 rather than both 0.
type EncodedMove uint16

const (
	MoveNone EncodedMove = 0
	MoveNull EncodedMove = (63 << 6) | 63
)

const (
	moveToMask     = 0x003f
	moveFromShift  = 6
	moveFromMask   = 0x0fc0
	movePromoShift = 12
	movePromoMask  = 0x7000
)

// encodedPromotion maps PieceType to the 3-bit promotion field used on the
// wire: 0 means no promotion.
var encodedPromotion = map[PieceType]uint16{
	NoPieceType: 0,
	Knight:      1,
	Bishop:      2,
	Rook:        3,
	Queen:       4,
}

var decodedPromotion = [8]PieceType{
	NoPieceType, Knight, Bishop, Rook, Queen, NoPieceType, NoPieceType, NoPieceType,
}

// EncodeMove packs m into its 16-bit on-disk representation.
func EncodeMove(m Move) EncodedMove {
	from := uint16(squareToIndex(m.FromSquare))
	to := uint16(squareToIndex(m.ToSquare))
	promo := encodedPromotion[m.Promotion]
	return EncodedMove((from << moveFromShift) | to | (promo << movePromoShift))
}

// Decode unpacks em into a Move. Behavior is undefined if em is MoveNone or
// MoveNull; callers must check for those sentinels first.
func (em EncodedMove) Decode() Move {
	to := indexToSquare(int(em & moveToMask))
	from := indexToSquare(int((em & moveFromMask) >> moveFromShift))
	promo := decodedPromotion[(em&movePromoMask)>>movePromoShift]
	return Move{FromSquare: from, ToSquare: to, Promotion: promo}
}

// IsNone reports whether em is the MOVE_NONE game-separator sentinel.
func (em EncodedMove) IsNone() bool {
	return em == MoveNone
}

// IsNull reports whether em is the MOVE_NULL sentinel (SAN "--").
func (em EncodedMove) IsNull() bool {
	return em == MoveNull
}

// EncodeResultMove returns an EncodedMove carrying no real move but encoding a
// GameResult in its to-square bitfield, as written immediately after a
// game's offset field in the binary database (see the dbio package).
func EncodeResultMove(r GameResult) EncodedMove {
	return EncodedMove(uint16(r) & moveToMask)
}

// Result decodes the GameResult stored in em's to-square bitfield. Only
// meaningful for the synthetic result-slot produced by EncodeResultMove.
func (em EncodedMove) Result() GameResult {
	return GameResult(em & moveToMask)
}

// GameResult is the recorded outcome of a compiled game, encoded in the
// to-square bitfield of the synthetic result Move that immediately follows
// a game's offset field in the binary database.
type GameResult uint8

const (
	WhiteWinResult GameResult = 1
	BlackWinResult GameResult = 2
	DrawResult     GameResult = 3
	UnknownResult  GameResult = 4
	InvalidResult  GameResult = 5
)

// String returns the PGN result token for r, or "*" for UnknownResult.
func (r GameResult) String() string {
	switch r {
	case WhiteWinResult:
		return "1-0"
	case BlackWinResult:
		return "0-1"
	case DrawResult:
		return "1/2-1/2"
	case InvalidResult:
		return "invalid"
	default:
		return "*"
	}
}

// ParseGameResult parses a PGN result token into a GameResult.
func ParseGameResult(s string) GameResult {
	switch s {
	case "1-0":
		return WhiteWinResult
	case "0-1":
		return BlackWinResult
	case "1/2-1/2":
		return DrawResult
	case "*":
		return UnknownResult
	default:
		return InvalidResult
	}
}
