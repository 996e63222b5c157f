package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ptt/boardd/article"
	"github.com/ptt/boardd/atomfeed"
	"github.com/ptt/boardd/bcache"
	"github.com/ptt/boardd/big5"
	"github.com/ptt/boardd/gate"
	"github.com/ptt/boardd/pttbbs"
	"github.com/ptt/boardd/query"
)

func newTestDebugHandler(t *testing.T) http.Handler {
	t.Helper()
	logger = zaptest.NewLogger(t)

	boards := bcache.NewStatic(bcache.NewSnapshot([]pttbbs.BoardHeader{
		{BrdName: "Talk", Title: "Talk * \xa4\xa4 chat"},
		{BrdName: "Secret", Title: "Hide * secret", Attr: pttbbs.BoardHide},
	}))
	store := article.NewStore(t.TempDir(), false, gate.New(2, 2))
	require.NoError(t, os.MkdirAll(store.BoardDir("Talk"), 0755))
	fh := pttbbs.FileHeader{Filename: "M.1700000001.A.001", Owner: "alice", Date: " 3/14", Title: "hello"}
	rec, err := fh.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.IndexPath("Talk"), rec, 0644))
	require.NoError(t, os.WriteFile(store.Path("Talk", fh.Filename), []byte("first line\n"), 0644))

	ioGate := gate.New(2, 2)
	feeds := &atomfeed.Builder{
		Resolver:   &query.Resolver{Boards: boards, Store: store},
		Decoder:    big5.NewConverter(big5.DefaultWindow, big5.After),
		FeedTitle:  template.Must(template.New("").Parse(DefaultAtomFeedTitle)),
		SitePrefix: "https://example.org",
	}
	return newDebugHandler(boards, ioGate, feeds)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestDebugHealthzAndStats(t *testing.T) {
	h := newTestDebugHandler(t)

	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok\n", rec.Body.String())

	rec = get(t, h, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var st Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	require.Equal(t, Stats{Boards: 2}, st)
}

func TestDebugAtomFeed(t *testing.T) {
	h := newTestDebugHandler(t)

	rec := get(t, h, "/atom/talk.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "<?xml"))
	for _, want := range []string{
		"<title>Talk - 中 chat</title>",
		"https://example.org/bbs/Talk/M.1700000001.A.001.html",
		"first line",
	} {
		require.True(t, bytes.Contains(rec.Body.Bytes(), []byte(want)), "missing %q in %s", want, body)
	}

	require.Equal(t, http.StatusNotFound, get(t, h, "/atom/Secret.xml").Code)
	require.Equal(t, http.StatusNotFound, get(t, h, "/atom/Nope.xml").Code)
}
