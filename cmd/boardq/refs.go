package main

import (
	"bytes"
	"regexp"
	"sort"

	"github.com/ptt/boardd/pttbbs"
)

// ArticleRef is an article mentioned by its aid inside another article.
type ArticleRef struct {
	BrdName  string
	Aid      pttbbs.Aid
	Filename string
}

var aidPatterns = []struct {
	Pattern *regexp.Regexp
	// Submatch indices of the board name and the aid. Zero means the board
	// is the one being scanned.
	Board, Aid int
}{
	{
		Pattern: regexp.MustCompile(`([0-9A-Za-z\-_]{1,12}) 看板 #([0-9A-Za-z\-_\@]{8,10})`),
		Board:   1,
		Aid:     2,
	},
	{
		Pattern: regexp.MustCompile(`#([0-9A-Za-z\-_\@]{8,10}) \(([0-9A-Za-z\-_]{1,12})\)`),
		Board:   2,
		Aid:     1,
	},
	{
		Pattern: regexp.MustCompile(`#([0-9A-Za-z\-_\@]{8,10})`),
		Aid:     1,
	},
}

// findAidRefs lists the aids mentioned in UTF-8 text, in order of
// appearance. A mention matched by a more specific pattern is not reported
// again by a looser one.
func findAidRefs(brdname string, input []byte) []ArticleRef {
	// Fast path.
	if bytes.IndexByte(input, '#') < 0 {
		return nil
	}

	type found struct {
		start, end int
		ref        ArticleRef
	}
	var all []found
	overlaps := func(s, e int) bool {
		for _, f := range all {
			if s < f.end && f.start < e {
				return true
			}
		}
		return false
	}
	for _, p := range aidPatterns {
		for _, m := range p.Pattern.FindAllSubmatchIndex(input, -1) {
			if overlaps(m[0], m[1]) {
				continue
			}
			aid, err := pttbbs.ParseAid(string(input[m[2*p.Aid]:m[2*p.Aid+1]]))
			if err != nil {
				continue
			}
			ref := ArticleRef{BrdName: brdname, Aid: aid, Filename: aid.Filename()}
			if p.Board > 0 {
				ref.BrdName = string(input[m[2*p.Board]:m[2*p.Board+1]])
			}
			all = append(all, found{start: m[0], end: m[1], ref: ref})
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].start < all[j].start })
	refs := make([]ArticleRef, len(all))
	for i := range all {
		refs[i] = all[i].ref
	}
	return refs
}
