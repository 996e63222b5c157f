// Package article locates article content and article indexes inside the
// board storage tree.
package article

import (
	"errors"
	"path/filepath"

	"github.com/ptt/boardd/gate"
	"github.com/ptt/boardd/pttbbs"
)

var (
	ErrParse            = errors.New("malformed content key")
	ErrInvalidFilename  = errors.New("invalid article file name")
	ErrIdentityMismatch = errors.New("file identity changed")
	ErrRangeInvalid     = errors.New("offset beyond end of file")
	ErrEmpty            = errors.New("empty file")
)

// Store resolves board files under Root. All file access goes through IO,
// which bounds the number of blocking reads in flight.
type Store struct {
	Root string
	// Sharded stores boards as <Root>/<first letter>/<name>, the way a
	// stock BBS home lays them out.
	Sharded bool
	IO      *gate.Gate
}

func NewStore(root string, sharded bool, io *gate.Gate) *Store {
	return &Store{Root: root, Sharded: sharded, IO: io}
}

func (s *Store) BoardDir(brdname string) string {
	if s.Sharded && brdname != "" {
		return filepath.Join(s.Root, brdname[:1], brdname)
	}
	return filepath.Join(s.Root, brdname)
}

// Path returns the path of name inside the board directory. name must not
// contain a path separator.
func (s *Store) Path(brdname, name string) string {
	return filepath.Join(s.BoardDir(brdname), name)
}

func (s *Store) IndexPath(brdname string) string {
	return s.Path(brdname, pttbbs.FnDir)
}

func (s *Store) BottomIndexPath(brdname string) string {
	return s.Path(brdname, pttbbs.FnDirBottom)
}

func (s *Store) do(fn func() error) error {
	return s.IO.Do(fn)
}
