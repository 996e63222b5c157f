package pttbbs

import (
	"testing"
	"time"
)

func TestIsValidArticleFileName(t *testing.T) {
	for _, test := range []struct {
		desc     string
		filename string
		want     bool
	}{
		{desc: "normal", filename: "M.1365119687.A.F72", want: true},
		{desc: "short suffix", filename: "M.1", want: true},
		{desc: "prefix only", filename: "M."},
		{desc: "digest file", filename: "G.1128765309.A.CE4"},
		{desc: "escapes board directory", filename: "M./../../etc/passwd"},
		{desc: "nul byte", filename: "M.1\x00"},
		{desc: "empty", filename: ""},
	} {
		t.Run(test.desc, func(t *testing.T) {
			if got := IsValidArticleFileName(test.filename); got != test.want {
				t.Errorf("IsValidArticleFileName(%q) = %t; want %t", test.filename, got, test.want)
			}
		})
	}
}

func TestIsValidBrdName(t *testing.T) {
	for name, want := range map[string]bool{
		"SYSOP":     true,
		"Gossiping": true,
		"a":         false,
		"_hidden":   false,
		"bad name":  false,
	} {
		if got := IsValidBrdName(name); got != want {
			t.Errorf("IsValidBrdName(%q) = %t; want %t", name, got, want)
		}
	}
}

func TestParseFileNameTime(t *testing.T) {
	got, err := ParseFileNameTime("M.1365119687.A.F72")
	if err != nil {
		t.Fatalf("ParseFileNameTime() = _, %v", err)
	}
	if want := time.Unix(1365119687, 0); !got.Equal(want) {
		t.Errorf("ParseFileNameTime() = %v; want %v", got, want)
	}
	if _, err := ParseFileNameTime("M"); err == nil {
		t.Errorf("ParseFileNameTime(%q) = _, nil; want error", "M")
	}
}
