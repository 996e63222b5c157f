// Package query answers boardd keys such as "17.title" or
// "17.articles.-20" from the board cache and board storage.
package query

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/ptt/boardd/article"
	"github.com/ptt/boardd/bcache"
	"github.com/ptt/boardd/dbcs"
	"github.com/ptt/boardd/pttbbs"
)

var (
	ErrNotFound   = errors.New("board not found")
	ErrUnknownKey = errors.New("unknown key")
)

// Boards is the board cache as seen by the resolver.
type Boards interface {
	// Board returns nil for out of range ids and vacant slots.
	Board(bid int) *pttbbs.BoardHeader
	BoardID(name string) int
	Children(bid int) []int
}

type Resolver struct {
	Boards Boards
	Store  *article.Store
	// Hot is optional; without it "hotboards" answers nothing.
	Hot bcache.HotboardSource
}

// Answer appends the value of key to w. If it returns an error, w is left
// as it was and the key has no value.
func (r *Resolver) Answer(w *bytes.Buffer, key string) error {
	mark := w.Len()
	if err := r.answer(w, key); err != nil {
		w.Truncate(mark)
		return err
	}
	return nil
}

func (r *Resolver) answer(w *bytes.Buffer, key string) error {
	switch {
	case key != "" && isDigit(key[0]):
		idstr, field, ok := strings.Cut(key, ".")
		if !ok {
			return ErrUnknownKey
		}
		bid, err := strconv.Atoi(idstr)
		if err != nil {
			return ErrUnknownKey
		}
		b := r.visible(bid)
		if b == nil {
			return ErrNotFound
		}
		return r.boardField(w, bid, b, field)

	case strings.HasPrefix(key, "tobid."):
		bid := r.Boards.BoardID(key[len("tobid."):])
		if r.visible(bid) == nil {
			return ErrNotFound
		}
		w.WriteString(strconv.Itoa(bid))
		return nil

	case key == "hotboards":
		if r.Hot == nil {
			return nil
		}
		bids, err := r.Hot.Hotboards()
		if err != nil {
			return err
		}
		for _, bid := range bids {
			if r.visible(bid) != nil {
				writeListItem(w, bid)
			}
		}
		return nil
	}
	return ErrUnknownKey
}

// visible returns the board if it exists and is public.
func (r *Resolver) visible(bid int) *pttbbs.BoardHeader {
	b := r.Boards.Board(bid)
	if b == nil || b.IsHidden() {
		return nil
	}
	return b
}

func (r *Resolver) boardField(w *bytes.Buffer, bid int, b *pttbbs.BoardHeader, field string) error {
	switch field {
	case "isboard":
		writeBool(w, !b.IsGroup())
	case "over18":
		writeBool(w, b.IsOver18())
	case "hidden":
		writeBool(w, b.IsHidden())
	case "brdname":
		w.WriteString(b.BrdName)
	case "title":
		w.WriteString(b.DisplayTitle())
	case "class":
		w.WriteString(b.Class())
	case "BM":
		w.WriteString(b.BM)
	case "parent":
		w.WriteString(strconv.Itoa(b.Parent))
	case "nuser":
		w.WriteString(strconv.Itoa(b.Nuser))
	case "count":
		w.WriteString(strconv.Itoa(r.Store.Count(r.Store.IndexPath(b.BrdName))))
	case "children":
		if !b.IsGroup() {
			return nil
		}
		for _, c := range r.Boards.Children(bid) {
			writeListItem(w, c)
		}
	case "bottoms":
		return r.Store.List(w, r.Store.BottomIndexPath(b.BrdName), 0, -1)
	default:
		return r.routedField(w, b, field)
	}
	return nil
}

func (r *Resolver) routedField(w *bytes.Buffer, b *pttbbs.BoardHeader, field string) error {
	name, arg, ok := strings.Cut(field, ".")
	if !ok {
		return ErrUnknownKey
	}
	switch name {
	case "articles":
		offset, length, err := parseListRange(arg)
		if err != nil {
			return err
		}
		return r.Store.List(w, r.Store.IndexPath(b.BrdName), offset, length)
	case "article":
		return r.Store.Whole(w, b.BrdName, arg)
	case "articlestat":
		tag, size, err := r.Store.Stat(b.BrdName, arg)
		if err != nil {
			return err
		}
		w.WriteString(tag)
		w.WriteByte(',')
		w.WriteString(strconv.FormatInt(size, 10))
		return nil
	case "articlepart":
		return r.selectPart(w, b, arg, dbcs.Whole)
	case "articlehead":
		return r.selectPart(w, b, arg, dbcs.Head)
	case "articletail":
		return r.selectPart(w, b, arg, dbcs.Tail)
	}
	return ErrUnknownKey
}

func (r *Resolver) selectPart(w *bytes.Buffer, b *pttbbs.BoardHeader, arg string, p dbcs.Policy) error {
	k, err := article.ParseContentKey(arg)
	if err != nil {
		return err
	}
	return r.Store.Select(w, b.BrdName, k, p)
}

// parseListRange parses "<offset>[.<length>]". A missing, zero or
// unparsable length means the default.
func parseListRange(s string) (offset, length int, err error) {
	if s == "" || !(isDigit(s[0]) || s[0] == '-') {
		return 0, 0, ErrUnknownKey
	}
	offstr, lenstr, _ := strings.Cut(s, ".")
	offset, err = strconv.Atoi(offstr)
	if err != nil {
		return 0, 0, ErrUnknownKey
	}
	length, _ = strconv.Atoi(lenstr)
	if length == 0 {
		length = article.DefaultListLength
	}
	return offset, length, nil
}

func writeBool(w *bytes.Buffer, v bool) {
	if v {
		w.WriteByte('1')
	} else {
		w.WriteByte('0')
	}
}

// writeListItem writes "<id>,". Deployed clients scan lists with "%d,", so
// the trailing comma stays.
func writeListItem(w *bytes.Buffer, id int) {
	w.WriteString(strconv.Itoa(id))
	w.WriteByte(',')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
