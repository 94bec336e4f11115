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

// Package dbio reads and writes the scout binary database: a flat sequence
// of records, each a big-endian 64-bit source-PGN offset (packed into four
// 16-bit Move slots; each slot holds a chess.EncodedMove, see the chess
// package's move_encoding.go), a synthetic result Move, the game's
// half-moves, and a MOVE_NONE separator. The file begins with a leading
// MOVE_NONE so boundary scanning always starts just past a separator.
package dbio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	chess "github.com/brighamskarda/scoutfish"
	"github.com/brighamskarda/scoutfish/internal/ingest"
)

// moveSize is sizeof(Move) on disk: 2 bytes, so the 64-bit offset field at
// the head of every record occupies exactly four Move slots.
const moveSize = 2

// offsetSlots is the number of Move slots the big-endian 64-bit source
// offset occupies at the head of every record.
const offsetSlots = 4

// ErrShortRead is returned by ReadGame when the data ends mid-record.
var ErrShortRead = errors.New("dbio: truncated record")

// Writer appends compiled games to a binary database file. The zero value
// is not usable; use NewWriter.
type Writer struct {
	w     *bufio.Writer
	f     *os.File
	wrote bool
}

// NewWriter creates path (truncating any existing file) and writes the
// file's leading MOVE_NONE separator.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("dbio: create %s: %w", path, err)
	}
	w := &Writer{w: bufio.NewWriterSize(f, 1<<20), f: f}
	if err := w.putMove(chess.MoveNone); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// WriteGame appends one compiled game record: offset, result, moves, and a
// trailing MOVE_NONE separator.
func (w *Writer) WriteGame(g ingest.CompiledGame) error {
	if err := w.putOffset(g.Offset); err != nil {
		return err
	}
	if err := w.putMove(chess.EncodeResultMove(g.Result)); err != nil {
		return err
	}
	for _, m := range g.Moves {
		if err := w.putMove(chess.EncodeMove(m)); err != nil {
			return err
		}
	}
	return w.putMove(chess.MoveNone)
}

func (w *Writer) putMove(m chess.EncodedMove) error {
	var buf [moveSize]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(m))
	_, err := w.w.Write(buf[:])
	return err
}

// putOffset packs a 64-bit big-endian offset into offsetSlots Move slots.
func (w *Writer) putOffset(offset int64) error {
	var buf [offsetSlots * moveSize]byte
	binary.BigEndian.PutUint64(buf[:], uint64(offset))
	_, err := w.w.Write(buf[:])
	return err
}

// Close flushes buffered output, records the final file size, and closes
// the underlying file handle.
func (w *Writer) Close() (size int64, err error) {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return 0, fmt.Errorf("dbio: flush: %w", err)
	}
	pos, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		w.f.Close()
		return 0, fmt.Errorf("dbio: tell: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return 0, fmt.Errorf("dbio: close: %w", err)
	}
	return pos, nil
}

// GameRecord is one decoded database record, as read back by a scout
// worker: the originating byte offset, the recorded result, and the
// sequence of on-disk encoded moves (not yet decoded to chess.Move, since
// the rule interpreter replays them move-by-move against a live Position).
type GameRecord struct {
	Offset int64
	Result chess.GameResult
	Moves  []chess.EncodedMove
}

// ReadGame decodes one game record from data starting at offset off, which
// must point immediately after a MOVE_NONE separator. It returns the
// record and the offset of the byte immediately following the record's
// trailing MOVE_NONE.
func ReadGame(data []byte, off int) (GameRecord, int, error) {
	if off+offsetSlots*moveSize+moveSize > len(data) {
		return GameRecord{}, off, ErrShortRead
	}
	offset := int64(binary.BigEndian.Uint64(data[off : off+offsetSlots*moveSize]))
	off += offsetSlots * moveSize

	result := chess.EncodedMove(binary.LittleEndian.Uint16(data[off : off+moveSize])).Result()
	off += moveSize

	var moves []chess.EncodedMove
	for {
		if off+moveSize > len(data) {
			return GameRecord{}, off, ErrShortRead
		}
		m := chess.EncodedMove(binary.LittleEndian.Uint16(data[off : off+moveSize]))
		off += moveSize
		if m.IsNone() {
			break
		}
		moves = append(moves, m)
	}

	return GameRecord{Offset: offset, Result: result, Moves: moves}, off, nil
}

// IsSeparator reports whether the Move slot at data[off:off+2] decodes to
// MOVE_NONE.
func IsSeparator(data []byte, off int) bool {
	if off+moveSize > len(data) {
		return false
	}
	return chess.EncodedMove(binary.LittleEndian.Uint16(data[off:off+moveSize])).IsNone()
}

// RecordHeaderSize is the number of bytes occupied by a record's offset
// field plus its result slot, i.e. the distance from just-past-a-separator
// to the first half-move Move slot.
const RecordHeaderSize = offsetSlots*moveSize + moveSize

// MoveSize is the on-disk size, in bytes, of one Move slot.
const MoveSize = moveSize
