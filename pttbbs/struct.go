package pttbbs

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
)

// Pttbbs is the read side of a BBS as served by boardd.
type Pttbbs interface {
	GetBoard(bid int) (Board, error)
	GetBoards(bids []int) ([]Board, error)
	GetBoardChildren(bid int) ([]int, error)
	GetArticleCount(bid int) (int, error)
	GetArticleList(bid, offset, length int) ([]Article, error)
	GetBottomList(bid int) ([]Article, error)
	GetArticleContent(bid int, filename string) ([]byte, error)
	GetArticleStat(bid int, filename string) (cacheKey string, size int, err error)
	GetArticleSelect(bid int, meth SelectMethod, filename, cacheKey string, offset, maxlen int) (*ArticlePart, error)
	BrdName2Bid(brdname string) (int, error)
	Hotboards() ([]Board, error)
}

// Board is a board as seen through the boardd protocol.
type Board struct {
	Bid      int
	IsBoard  bool
	Over18   bool
	Hidden   bool
	BrdName  string
	Title    string
	Class    string
	BM       string
	Parent   int
	Nuser    int
	Children []int
}

type Article struct {
	Offset    int
	FileName  string
	Date      string
	Recommend int
	FileMode  int
	Owner     string
	Title     string
	Modified  time.Time
}

type ArticlePart struct {
	CacheKey string
	FileSize int
	Offset   int
	Length   int
	Content  []byte
}

// Non-mail file modes
const (
	FileLocal = 1 << iota
	FileMarked
	FileDigest
	FileBottom
	FileSolved
)

// Mail file modes
const (
	FileRead = 1 << iota
	_        // FileMarked
	FileReplied
	FileMulti
)

type SelectMethod string

const (
	SelectPart SelectMethod = `articlepart`
	SelectHead SelectMethod = `articlehead`
	SelectTail SelectMethod = `articletail`
)

// Board attributes (boardheader brdattr).
const (
	BoardNoTran     uint32 = 0x00000001
	BoardNoCount    uint32 = 0x00000002
	BoardGroup      uint32 = 0x00000008
	BoardHide       uint32 = 0x00000010
	BoardPostMask   uint32 = 0x00000020
	BoardAnonymous  uint32 = 0x00000040
	BoardTop        uint32 = 0x00000800
	BoardNoRecmd    uint32 = 0x00001000
	BoardRestricted uint32 = 0x00040000
	BoardOver18     uint32 = 0x01000000
)

// User permission bits (boardheader level).
const (
	PermBasic uint32 = 1 << iota
	PermChat
	PermPage
	PermPost
	PermLoginOK
)

// PermBaseline is what every logged-in user holds. Boards asking for more
// are not public.
const PermBaseline = PermBasic | PermChat | PermPage | PermPost | PermLoginOK

// Storage names inside a board directory.
const (
	FnDir       = ".DIR"
	FnDirBottom = ".DIR.bottom"
	FnBoards    = ".BRD"
)
