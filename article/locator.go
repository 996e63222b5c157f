package article

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ptt/boardd/dbcs"
	"github.com/ptt/boardd/pttbbs"
)

// Part is a byte range read from one file instance.
type Part struct {
	Tag      string
	FileSize int64
	Offset   int64
	// Data is owned by the caller.
	Data []byte
}

// Open reads the range addressed by k from an article of board brdname.
//
// A negative offset counts from the end of the file and is clamped at 0; an
// offset past the end fails. A negative length, or one running past the end,
// means "up to the end". A zero-length range is a valid, empty result.
func (s *Store) Open(brdname string, k ContentKey) (*Part, error) {
	if !pttbbs.IsValidArticleFileName(k.Filename) {
		return nil, ErrInvalidFilename
	}
	path := s.Path(brdname, k.Filename)

	var part *Part
	err := s.do(func() error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		tag, size, err := fileTag(f)
		if err != nil {
			return err
		}
		if k.Tag != "" && !strings.HasPrefix(tag, k.Tag) {
			return ErrIdentityMismatch
		}

		offset := int64(k.Offset)
		if offset < 0 {
			offset += size
		}
		if offset < 0 {
			offset = 0
		}
		if offset > size {
			return ErrRangeInvalid
		}
		length := int64(k.Length)
		if length < 0 || length > size-offset {
			length = size - offset
		}

		data := make([]byte, length)
		if length > 0 {
			if _, err := f.ReadAt(data, offset); err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
		}
		part = &Part{Tag: tag, FileSize: size, Offset: offset, Data: data}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

// Select narrows the range addressed by k with policy p and writes
// "<tag>,<file size>,<selected offset>,<selected size>\n" followed by the
// selected bytes. The selected offset is relative to the range read.
func (s *Store) Select(w *bytes.Buffer, brdname string, k ContentKey, p dbcs.Policy) error {
	part, err := s.Open(brdname, k)
	if err != nil {
		return err
	}
	r, err := dbcs.Select(p, part.Data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s,%d,%d,%d\n", part.Tag, part.FileSize, r.Offset, r.Size)
	w.Write(r.Slice(part.Data))
	return nil
}

// Whole writes the entire article. Empty articles are an error.
func (s *Store) Whole(w *bytes.Buffer, brdname, filename string) error {
	if !pttbbs.IsValidArticleFileName(filename) {
		return ErrInvalidFilename
	}
	path := s.Path(brdname, filename)
	return s.do(func() error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		fi, err := f.Stat()
		if err != nil {
			return err
		}
		if fi.Size() == 0 {
			return ErrEmpty
		}
		w.Grow(int(fi.Size()))
		_, err = w.ReadFrom(f)
		return err
	})
}

// Stat returns the identity tag and size of an article.
func (s *Store) Stat(brdname, filename string) (tag string, size int64, err error) {
	if !pttbbs.IsValidArticleFileName(filename) {
		return "", 0, ErrInvalidFilename
	}
	path := s.Path(brdname, filename)
	err = s.do(func() error {
		tag, size, err = pathTag(path)
		return err
	})
	return
}
