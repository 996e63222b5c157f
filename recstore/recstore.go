// Package recstore reads files made of fixed-size records, such as board
// lists and article indexes.
package recstore

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrOutOfRange = errors.New("record index out of range")
	ErrBadSize    = errors.New("invalid record size")
)

// Count returns the number of whole records in path, or 0 if it cannot be
// read.
func Count(path string, size int) int {
	if size <= 0 {
		return 0
	}
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return int(fi.Size() / int64(size))
}

// File keeps a record file open across several reads.
type File struct {
	f     *os.File
	size  int
	total int
}

func Open(path string, size int) (*File, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{
		f:     f,
		size:  size,
		total: int(fi.Size() / int64(size)),
	}, nil
}

// Len returns the record count at open time.
func (r *File) Len() int {
	return r.total
}

// Read fills buf with record index, counted from 1. A record appended after
// Open is still readable.
func (r *File) Read(index int, buf []byte) error {
	if index < 1 {
		return ErrOutOfRange
	}
	if len(buf) < r.size {
		return ErrBadSize
	}
	n, err := r.f.ReadAt(buf[:r.size], int64(index-1)*int64(r.size))
	if n == r.size {
		return nil
	}
	if err == nil || err == io.EOF {
		return ErrOutOfRange
	}
	return fmt.Errorf("read record %d: %w", index, err)
}

func (r *File) Close() error {
	return r.f.Close()
}

// ReadRecord reads a single record from path.
func ReadRecord(path string, size, index int) ([]byte, error) {
	r, err := Open(path, size)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	buf := make([]byte, size)
	if err := r.Read(index, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
