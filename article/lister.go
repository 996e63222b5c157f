package article

import (
	"bytes"

	"github.com/ptt/boardd/pttbbs"
	"github.com/ptt/boardd/recstore"
)

const DefaultListLength = 20

// Count returns the number of entries of an index file.
func (s *Store) Count(path string) int {
	var n int
	_ = s.do(func() error {
		n = recstore.Count(path, pttbbs.FileHeaderSize)
		return nil
	})
	return n
}

// List writes up to length entries of an index file starting after entry
// offset, one "index,filename,date,recommend,mode,owner,title" line each.
// A negative offset counts back from the end; a negative length lists to the
// end of the file.
func (s *Store) List(w *bytes.Buffer, path string, offset, length int) error {
	return s.do(func() error {
		r, err := recstore.Open(path, pttbbs.FileHeaderSize)
		if err != nil {
			return err
		}
		defer r.Close()

		total := r.Len()
		if total <= 0 {
			return nil
		}
		if offset < 0 {
			offset %= total
			if offset < 0 {
				offset += total
			}
		}

		rec := make([]byte, pttbbs.FileHeaderSize)
		line := make([]byte, 0, 256)
		var fh pttbbs.FileHeader
		for n := 0; length < 0 || n < length; n++ {
			offset++
			if r.Read(offset, rec) != nil {
				break
			}
			if err := fh.UnmarshalBinary(rec); err != nil {
				return err
			}
			line = fh.AppendListLine(line[:0], offset)
			w.Write(line)
		}
		return nil
	})
}
