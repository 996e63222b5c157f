package server

import (
	"bytes"
	"fmt"
	"os"
	"testing"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/require"

	"github.com/ptt/boardd/article"
	"github.com/ptt/boardd/bcache"
	"github.com/ptt/boardd/big5"
	"github.com/ptt/boardd/gate"
	"github.com/ptt/boardd/pttbbs"
	"github.com/ptt/boardd/query"
)

const e2eArticle = "M.1700000001.A.001"

// newBoardResolver serves board 17 "Talk" with five articles, under group
// board 1.
func newBoardResolver(t *testing.T) *query.Resolver {
	t.Helper()
	headers := make([]pttbbs.BoardHeader, 17)
	headers[0] = pttbbs.BoardHeader{BrdName: "Lobby", Title: "Root * lobby", Attr: pttbbs.BoardGroup}
	headers[16] = pttbbs.BoardHeader{
		BrdName: "Talk",
		Title:   "Talk * General Discussion",
		BM:      "alice",
		Gid:     1,
		Parent:  1,
		Nuser:   3,
	}

	store := article.NewStore(t.TempDir(), true, gate.New(4, 16))
	require.NoError(t, os.MkdirAll(store.BoardDir("Talk"), 0755))
	var dir bytes.Buffer
	for i := 1; i <= 5; i++ {
		b, err := (&pttbbs.FileHeader{
			Filename:  fmt.Sprintf("M.%d.A.%03X", 1700000000+i, i),
			Recommend: i,
			Owner:     "alice",
			Date:      " 3/14",
			Title:     fmt.Sprintf("post %d", i),
		}).MarshalBinary()
		require.NoError(t, err)
		dir.Write(b)
	}
	require.NoError(t, os.WriteFile(store.IndexPath("Talk"), dir.Bytes(), 0644))
	require.NoError(t, os.WriteFile(store.Path("Talk", e2eArticle), []byte("\xa4\xa4 line\nsecond\n"), 0644))

	return &query.Resolver{
		Boards: bcache.NewSnapshot(headers),
		Store:  store,
		Hot:    bcache.StaticHotboards{17},
	}
}

func TestEndToEndTitle(t *testing.T) {
	addr := startServer(t, newBoardResolver(t), Config{})
	require.Equal(t, "VALUE 17.title 0 18\r\nGeneral Discussion\r\nEND\r\n", roundTrip(t, addr, "get 17.title\r\n"))
}

func TestEndToEndArticles(t *testing.T) {
	addr := startServer(t, newBoardResolver(t), Config{})
	const list = "1,M.1700000001.A.001, 3/14,1,0,alice,post 1\n" +
		"2,M.1700000002.A.002, 3/14,2,0,alice,post 2\n"
	want := fmt.Sprintf("VALUE 17.articles.0.2 0 %d\r\n%s\r\nEND\r\n", len(list), list)
	require.Equal(t, want, roundTrip(t, addr, "get 17.articles.0.2\r\n"))
}

func TestEndToEndUnknownKey(t *testing.T) {
	addr := startServer(t, newBoardResolver(t), Config{})
	require.Equal(t, "END\r\n", roundTrip(t, addr, "get bogus\r\n"))
}

func TestEndToEndMemcacheClient(t *testing.T) {
	addr := startServer(t, newBoardResolver(t), Config{
		Converter: big5.NewConverter(big5.DefaultWindow, big5.After),
	})
	mc := memcache.New(addr)

	it, err := mc.Get("17.brdname")
	require.NoError(t, err)
	require.Equal(t, "Talk", string(it.Value))

	_, err = mc.Get("18.brdname")
	require.ErrorIs(t, err, memcache.ErrCacheMiss)

	items, err := mc.GetMulti([]string{"17.BM", "17.count", "0.title", "article." + e2eArticle, "17.article." + e2eArticle})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "alice", string(items["17.BM"].Value))
	require.Equal(t, "5", string(items["17.count"].Value))
	require.Equal(t, "中 line\nsecond\n", string(items["17.article."+e2eArticle].Value))
}

func TestEndToEndRemotePtt(t *testing.T) {
	addr := startServer(t, newBoardResolver(t), Config{
		Converter: big5.NewConverter(big5.DefaultWindow, big5.After),
	})
	ptt := pttbbs.NewRemotePtt(addr, 2)

	brd, err := ptt.GetBoard(17)
	require.NoError(t, err)
	require.Equal(t, pttbbs.Board{
		Bid:     17,
		IsBoard: true,
		BrdName: "Talk",
		Title:   "General Discussion",
		Class:   "Talk",
		BM:      "alice",
		Parent:  1,
		Nuser:   3,
	}, brd)

	_, err = ptt.GetBoard(16)
	require.ErrorIs(t, err, pttbbs.ErrNotFound)

	bid, err := ptt.BrdName2Bid("talk")
	require.NoError(t, err)
	require.Equal(t, 17, bid)

	children, err := ptt.GetBoardChildren(1)
	require.NoError(t, err)
	require.Equal(t, []int{17}, children)

	n, err := ptt.GetArticleCount(17)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	articles, err := ptt.GetArticleList(17, -1, 0)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.Equal(t, "M.1700000005.A.005", articles[0].FileName)
	require.Equal(t, 5, articles[0].Offset)

	key, size, err := ptt.GetArticleStat(17, e2eArticle)
	require.NoError(t, err)
	require.Equal(t, 14, size)

	part, err := ptt.GetArticleSelect(17, pttbbs.SelectHead, e2eArticle, key, 0, -1)
	require.NoError(t, err)
	require.Equal(t, key, part.CacheKey)
	require.Equal(t, 14, part.FileSize)
	require.Equal(t, "中 line\nsecond\n", string(part.Content))

	part, err = ptt.GetArticleSelect(17, pttbbs.SelectPart, e2eArticle, "0-0", 0, -1)
	require.ErrorIs(t, err, pttbbs.ErrNotFound)
	require.Nil(t, part)

	hot, err := ptt.Hotboards()
	require.NoError(t, err)
	require.Len(t, hot, 1)
	require.Equal(t, "Talk", hot[0].BrdName)
}
