package pttbbs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBoardHeaderRecord(t *testing.T) {
	want := BoardHeader{
		BrdName: "Test",
		Title:   "嘰哩 ◎General Discussion",
		BM:      "sysop/guest",
		Attr:    BoardGroup | BoardOver18,
		Level:   PermPost,
		Gid:     2,
		Parent:  2,
		Nuser:   42,
	}
	b, err := want.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != BoardHeaderSize {
		t.Fatalf("len(MarshalBinary()) = %d; want %d", len(b), BoardHeaderSize)
	}
	var got BoardHeader
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("board header mismatch (-want +got):\n%s", diff)
	}
	if err := got.UnmarshalBinary(b[:10]); err != ErrShortRecord {
		t.Errorf("UnmarshalBinary(short) = %v; want %v", err, ErrShortRecord)
	}
}

func TestBoardHeaderTitle(t *testing.T) {
	h := BoardHeader{Title: "CLS1 \xa1\xb7General Discussion"}
	if got, want := h.Class(), "CLS1"; got != want {
		t.Errorf("Class() = %q; want %q", got, want)
	}
	if got, want := h.DisplayTitle(), "General Discussion"; got != want {
		t.Errorf("DisplayTitle() = %q; want %q", got, want)
	}

	short := BoardHeader{Title: "ab"}
	if got := short.DisplayTitle(); got != "" {
		t.Errorf("DisplayTitle() of short title = %q; want empty", got)
	}
	if got := short.Class(); got != "ab" {
		t.Errorf("Class() of short title = %q; want %q", got, "ab")
	}
}

func TestBoardHeaderIsHidden(t *testing.T) {
	for _, test := range []struct {
		desc  string
		attr  uint32
		level uint32
		want  bool
	}{
		{desc: "public", want: false},
		{desc: "baseline level", level: PermBaseline, want: false},
		{desc: "hide flag", attr: BoardHide, want: true},
		{desc: "top flag", attr: BoardTop, want: true},
		{desc: "restricted level", level: 1 << 13, want: true},
		{desc: "restricted level with post mask", attr: BoardPostMask, level: 1 << 13, want: false},
		{desc: "hide flag beats post mask", attr: BoardHide | BoardPostMask, want: true},
	} {
		t.Run(test.desc, func(t *testing.T) {
			h := BoardHeader{Attr: test.attr, Level: test.level}
			if got := h.IsHidden(); got != test.want {
				t.Errorf("IsHidden() = %t; want %t", got, test.want)
			}
		})
	}
}

func TestFileHeaderListLine(t *testing.T) {
	fh := FileHeader{
		Filename:  "M.1365119687.A.F72",
		Recommend: -3,
		Owner:     "guest",
		Date:      " 4/05",
		Title:     "[問題] \xb4\xfa\xb8\xd5   ",
		FileMode:  FileMarked,
	}
	b, err := fh.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got FileHeader
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(fh, got); diff != "" {
		t.Errorf("file header mismatch (-want +got):\n%s", diff)
	}

	line := string(got.AppendListLine(nil, 7))
	if want := "7,M.1365119687.A.F72, 4/05,-3,2,guest,[問題] \xb4\xfa\xb8\xd5\n"; line != want {
		t.Errorf("AppendListLine() = %q; want %q", line, want)
	}
}
