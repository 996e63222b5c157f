// Package atomfeed renders the latest articles of a board as an Atom feed,
// reading everything through boardd keys.
package atomfeed

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strconv"
	"text/template"
	"time"

	"golang.org/x/tools/blog/atom"

	"github.com/ptt/boardd/ansi"
	"github.com/ptt/boardd/article"
	"github.com/ptt/boardd/pttbbs"
)

const (
	DefaultEntries      = 20
	DefaultSnippetBytes = 512
)

var ErrNoBoard = errors.New("atomfeed: no such board")

// Resolver answers boardd keys, as query.Resolver does.
type Resolver interface {
	Answer(w *bytes.Buffer, key string) error
}

// Decoder turns stored Big5 text into UTF-8.
type Decoder interface {
	Convert(src []byte) ([]byte, error)
}

// FeedBoard is what FeedTitle is executed with.
type FeedBoard struct {
	Bid     int
	BrdName string
	Title   string
}

type Builder struct {
	Resolver  Resolver
	Decoder   Decoder
	FeedTitle *template.Template
	// SitePrefix is prepended to feed and article paths.
	SitePrefix   string
	Entries      int
	SnippetBytes int
}

// Build returns the feed of board bid, newest article first.
func (b *Builder) Build(bid int) (*atom.Feed, error) {
	brd := FeedBoard{Bid: bid}
	brd.BrdName = b.text(bid, "brdname")
	if brd.BrdName == "" {
		return nil, ErrNoBoard
	}
	brd.Title = b.text(bid, "title")

	var title bytes.Buffer
	if err := b.FeedTitle.Execute(&title, brd); err != nil {
		return nil, err
	}

	n := b.Entries
	if n <= 0 {
		n = DefaultEntries
	}
	var list bytes.Buffer
	if err := b.Resolver.Answer(&list, key(bid, "articles.-"+strconv.Itoa(n))); err != nil {
		return nil, err
	}
	articles, err := pttbbs.ParseDirList(list.String())
	if err != nil {
		return nil, err
	}

	feedURL := b.SitePrefix + "/atom/" + brd.BrdName + ".xml"
	var entries []*atom.Entry
	for i := len(articles) - 1; i >= 0; i-- {
		if !pttbbs.IsValidArticleFileName(articles[i].FileName) {
			continue
		}
		entries = append(entries, b.entry(bid, brd.BrdName, &articles[i]))
	}

	return &atom.Feed{
		Title: title.String(),
		ID:    feedURL,
		Link: []atom.Link{{
			Rel:  "self",
			Href: feedURL,
		}},
		Updated: atom.Time(latestOrNow(articles)),
		Entry:   entries,
	}, nil
}

func (b *Builder) entry(bid int, brdname string, a *pttbbs.Article) *atom.Entry {
	articleURL := b.SitePrefix + "/bbs/" + brdname + "/" + a.FileName + ".html"
	return &atom.Entry{
		Author: &atom.Person{
			Name: a.Owner,
		},
		Title: b.decode([]byte(a.Title)),
		ID:    articleURL,
		Link: []atom.Link{{
			Rel:  "alternate",
			Type: "text/html",
			Href: articleURL,
		}},
		Published: atom.Time(a.Modified),
		Updated:   atom.Time(a.Modified),
		Content: &atom.Text{
			Type: "html",
			Body: fmt.Sprintf("<pre>%s</pre>", html.EscapeString(b.snippet(bid, a.FileName))),
		},
	}
}

// snippet returns the first lines of an article without colors. Failures
// give an empty snippet.
func (b *Builder) snippet(bid int, filename string) string {
	size := b.SnippetBytes
	if size <= 0 {
		size = DefaultSnippetBytes
	}
	var buf bytes.Buffer
	if err := b.Resolver.Answer(&buf, key(bid, "articlehead."+article.ContentKey{Length: size, Filename: filename}.String())); err != nil {
		return ""
	}
	data := buf.Bytes()
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[i+1:]
	} else {
		return ""
	}
	return string(ansi.Strip([]byte(b.decode(data))))
}

func (b *Builder) text(bid int, field string) string {
	var buf bytes.Buffer
	if err := b.Resolver.Answer(&buf, key(bid, field)); err != nil {
		return ""
	}
	return b.decode(buf.Bytes())
}

func (b *Builder) decode(data []byte) string {
	if b.Decoder == nil || len(data) == 0 {
		return string(data)
	}
	out, err := b.Decoder.Convert(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

func key(bid int, field string) string {
	return strconv.Itoa(bid) + "." + field
}

func latestOrNow(articles []pttbbs.Article) time.Time {
	for i := len(articles) - 1; i >= 0; i-- {
		if t := articles[i].Modified; !t.IsZero() {
			return t
		}
	}
	return time.Now()
}
