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

//go:build unix

package dbio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MappedFile is a read-only memory-mapped view of a database file. One
// owning handle is created per scout run; workers only ever borrow Data()
// and never close it themselves.
type MappedFile struct {
	f    *os.File
	data []byte
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
	if fi.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("dbio: %s is empty", path)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("dbio: mmap %s: %w", path, err)
	}
	return &MappedFile{f: f, data: data}, nil
}

// Data returns the mapped byte slice. Valid only until Close is called;
// workers must finish all reads before the owner releases the mapping.
func (m *MappedFile) Data() []byte {
	return m.data
}

// Close unmaps and closes the underlying file. It must be called exactly
// once, after every worker reading Data() has joined.
func (m *MappedFile) Close() error {
	if err := unix.Munmap(m.data); err != nil {
		m.f.Close()
		return fmt.Errorf("dbio: munmap: %w", err)
	}
	return m.f.Close()
}
