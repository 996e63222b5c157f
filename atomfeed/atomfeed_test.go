package atomfeed

import (
	"bytes"
	"errors"
	"testing"
	"text/template"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ptt/boardd/big5"
)

type mapResolver map[string]string

func (m mapResolver) Answer(w *bytes.Buffer, key string) error {
	v, ok := m[key]
	if !ok {
		return errors.New("no such key")
	}
	w.WriteString(v)
	return nil
}

func TestBuild(t *testing.T) {
	r := mapResolver{
		"17.brdname": "Talk",
		"17.title":   "\xa4\xa4 talk",
		"17.articles.-2": "4,M.1700000004.A.004, 3/14,0,0,alice,first\n" +
			"5,M.1700000005.A.005, 3/15,2,0,bob,\xa4\xa4 second\n",
		"17.articlehead..0.64.M.1700000005.A.005": "1-2,30,0,17\n\x1b[1;31m<b>\x1b[m body\n",
	}
	b := &Builder{
		Resolver:     r,
		Decoder:      big5.NewConverter(big5.DefaultWindow, big5.After),
		FeedTitle:    template.Must(template.New("").Parse("{{.BrdName}} - {{.Title}}")),
		SitePrefix:   "https://example.org",
		Entries:      2,
		SnippetBytes: 64,
	}

	feed, err := b.Build(17)
	require.NoError(t, err)
	require.Equal(t, "Talk - 中 talk", feed.Title)
	require.Equal(t, "https://example.org/atom/Talk.xml", feed.ID)
	updated, err := time.Parse(time.RFC3339, string(feed.Updated))
	require.NoError(t, err)
	require.True(t, updated.Equal(time.Unix(1700000005, 0)), "updated %v", updated)

	var got []string
	for _, e := range feed.Entry {
		got = append(got, e.Author.Name+" "+e.Title+" "+e.ID)
	}
	want := []string{
		"bob 中 second https://example.org/bbs/Talk/M.1700000005.A.005.html",
		"alice first https://example.org/bbs/Talk/M.1700000004.A.004.html",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "<pre>&lt;b&gt; body\n</pre>", feed.Entry[0].Content.Body)
	require.Equal(t, "<pre></pre>", feed.Entry[1].Content.Body)
}

func TestBuildNoBoard(t *testing.T) {
	b := &Builder{Resolver: mapResolver{}, FeedTitle: template.Must(template.New("").Parse(""))}
	_, err := b.Build(3)
	require.ErrorIs(t, err, ErrNoBoard)
}
