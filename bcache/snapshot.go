// Package bcache keeps an in-memory copy of the board list (.BRD) and the
// group hierarchy built from it.
package bcache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ptt/boardd/pttbbs"
	"github.com/ptt/boardd/recstore"
)

// Snapshot is an immutable view of the board list. Board ids are the 1-based
// record numbers of the .BRD file.
type Snapshot struct {
	boards   []pttbbs.BoardHeader
	byName   map[string]int
	children [][]int
}

// Load reads every record of a .BRD file.
func Load(path string) (*Snapshot, error) {
	r, err := recstore.Open(path, pttbbs.BoardHeaderSize)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	headers := make([]pttbbs.BoardHeader, r.Len())
	buf := make([]byte, pttbbs.BoardHeaderSize)
	for i := range headers {
		if err := r.Read(i+1, buf); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		if err := headers[i].UnmarshalBinary(buf); err != nil {
			return nil, err
		}
	}
	return NewSnapshot(headers), nil
}

// NewSnapshot indexes headers; headers[i] becomes board id i+1. Records with
// an empty name are vacant.
func NewSnapshot(headers []pttbbs.BoardHeader) *Snapshot {
	s := &Snapshot{
		boards:   headers,
		byName:   make(map[string]int, len(headers)),
		children: make([][]int, len(headers)+1),
	}
	for i := range headers {
		h := &headers[i]
		if h.BrdName == "" {
			continue
		}
		bid := i + 1
		s.byName[strings.ToLower(h.BrdName)] = bid
		if h.Gid > 0 && h.Gid <= len(headers) && h.Gid != bid {
			s.children[h.Gid] = append(s.children[h.Gid], bid)
		}
	}
	for _, c := range s.children {
		sort.SliceStable(c, func(i, j int) bool {
			a, b := &s.boards[c[i]-1], &s.boards[c[j]-1]
			if a.Title != b.Title {
				return a.Title < b.Title
			}
			return strings.ToLower(a.BrdName) < strings.ToLower(b.BrdName)
		})
	}
	return s
}

// Len returns the highest valid board id.
func (s *Snapshot) Len() int {
	return len(s.boards)
}

// Board returns the header of bid, or nil if the id is out of range or the
// slot is vacant.
func (s *Snapshot) Board(bid int) *pttbbs.BoardHeader {
	if bid <= 0 || bid > len(s.boards) {
		return nil
	}
	h := &s.boards[bid-1]
	if h.BrdName == "" {
		return nil
	}
	return h
}

// BoardID looks a board up by name, ignoring case. It returns 0 if there is
// no such board.
func (s *Snapshot) BoardID(name string) int {
	return s.byName[strings.ToLower(name)]
}

// Children returns the ids of the boards grouped under bid, ordered by
// title. The slice must not be modified.
func (s *Snapshot) Children(bid int) []int {
	if bid <= 0 || bid >= len(s.children) {
		return nil
	}
	return s.children[bid]
}
