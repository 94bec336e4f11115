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

//go:build windows

package dbio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// MappedFile is a read-only memory-mapped view of a database file. One
// owning handle is created per scout run; workers only ever borrow Data()
// and never close it themselves.
type MappedFile struct {
	f       *os.File
	mapping windows.Handle
	addr    uintptr
	data    []byte
}

// OpenMapped opens path and maps its full contents read-only.
func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dbio: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("dbio: stat %s: %w", path, err)
	}
	size := fi.Size()
	if size == 0 {
		f.Close()
		return nil, fmt.Errorf("dbio: %s is empty", path)
	}

	mapping, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, uint32(size>>32), uint32(size), nil)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("dbio: CreateFileMapping %s: %w", path, err)
	}

	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(mapping)
		f.Close()
		return nil, fmt.Errorf("dbio: MapViewOfFile %s: %w", path, err)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return &MappedFile{f: f, mapping: mapping, addr: addr, data: data}, nil
}

// Data returns the mapped byte slice. Valid only until Close is called;
// workers must finish all reads before the owner releases the mapping.
func (m *MappedFile) Data() []byte {
	return m.data
}

// Close unmaps and closes the underlying file. It must be called exactly
// once, after every worker reading Data() has joined.
func (m *MappedFile) Close() error {
	if err := windows.UnmapViewOfFile(m.addr); err != nil {
		windows.CloseHandle(m.mapping)
		m.f.Close()
		return fmt.Errorf("dbio: UnmapViewOfFile: %w", err)
	}
	if err := windows.CloseHandle(m.mapping); err != nil {
		m.f.Close()
		return fmt.Errorf("dbio: CloseHandle: %w", err)
	}
	return m.f.Close()
}
