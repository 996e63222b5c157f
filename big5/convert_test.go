package big5

import (
	"bytes"
	"math/rand"
	"testing"

	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/ptt/boardd/ansi"
)

func TestConvert(t *testing.T) {
	for _, test := range []struct {
		desc      string
		input     string
		placement Placement
		want      string
		wantErr   error
	}{
		{
			desc:  "ascii passes through",
			input: "hello\r\n\033[1;31mworld\033[m",
			want:  "hello\r\n\033[1;31mworld\033[m",
		},
		{
			desc:  "plain characters",
			input: "\xa4\x40\xa4\xa4",
			want:  "一中",
		},
		{
			desc:  "escape between lead and trail",
			input: "\xa4\033[1;31m\x40",
			want:  "一\033[1;31m",
		},
		{
			desc:      "escape emitted before with shifted codes",
			input:     "\xa4\033[1;31m\x40",
			placement: Before,
			want:      "\033[111;131m一",
		},
		{
			desc:  "several runs accumulate",
			input: "\xa4\033[31m\033[44m\x40",
			want:  "一\033[31;44m",
		},
		{
			desc:  "bare reset",
			input: "\xa4\033[m\x40",
			want:  "一\033[0;7;0m",
		},
		{
			desc:  "escape after trail is plain text",
			input: "\xa4\x40\033[32mx",
			want:  "一\033[32mx",
		},
		{
			desc:  "malformed run eats its escape",
			input: "\xa4\033[1H\x40",
			want:  "�[1H@",
		},
		{
			desc:  "malformed run after valid run",
			input: "\xa4\033[31m\033[31x\xa4\xa4",
			want:  "�[31x中",
		},
		{
			desc:  "unmapped code",
			input: "\x80\x40a",
			want:  "�a",
		},
		{
			desc:    "lead byte at end",
			input:   "abc\xa4",
			wantErr: ErrUnderflow,
		},
		{
			desc:    "escape cut by end of input",
			input:   "\xa4\033[1;3",
			wantErr: ErrUnderflow,
		},
		{
			desc:    "escape longer than window",
			input:   "\xa4\033[1;1;1;1;1;1;1;1;1;1m\x40",
			wantErr: ErrWindowOverrun,
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			c := NewConverter(DefaultWindow, test.placement)
			got, err := c.Convert([]byte(test.input))
			if err != test.wantErr {
				t.Fatalf("Convert(%q) = _, %v; want _, %v", test.input, err, test.wantErr)
			}
			if err != nil {
				return
			}
			if string(got) != test.want {
				t.Errorf("Convert(%q) = %q; want %q", test.input, got, test.want)
			}
		})
	}
}

func TestConvertMalformedRunLeavesNoEscape(t *testing.T) {
	for _, input := range []string{
		"\xa4\x1b[31x\xa4\xa4",
		"\xa4\x1b[1;33m\x1b[2J\x40",
	} {
		got, err := NewConverter(DefaultWindow, After).Convert([]byte(input))
		if err != nil {
			t.Fatalf("Convert(%q) = _, %v", input, err)
		}
		if bytes.IndexByte(got, ansi.Esc) >= 0 {
			t.Errorf("Convert(%q) = %q; want no ESC", input, got)
		}
	}
}

func TestConvertWindowIsConfigurable(t *testing.T) {
	input := []byte("\xa4\033[1;1;1;1;1;1;1;1;1;1m\x40")
	got, err := NewConverter(32, After).Convert(input)
	if err != nil {
		t.Fatalf("Convert() with a wider window = _, %v", err)
	}
	if want := "一\033[1m"; string(got) != want {
		t.Errorf("Convert() = %q; want %q", got, want)
	}
}

func TestConvertZeroValue(t *testing.T) {
	var c *Converter
	got, err := c.Convert([]byte("\xa4\x40"))
	if err != nil || string(got) != "一" {
		t.Errorf("nil Converter Convert() = %q, %v; want %q, nil", got, err, "一")
	}
}

func TestRoundTrip(t *testing.T) {
	enc := traditionalchinese.Big5.NewEncoder()
	text := []rune("測試看板的標題，中文與 ASCII mixed!")
	escapes := []string{"\033[1;33m", "\033[m", "\033[44m", "\033[0;1;37;41m"}

	r := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		var input, plain bytes.Buffer
		for _, ru := range text {
			b, err := enc.Bytes([]byte(string(ru)))
			if err != nil {
				t.Fatalf("encoding %q: %v", ru, err)
			}
			plain.Write(b)
			if len(b) == 2 && r.Intn(3) == 0 {
				// In-character escape.
				input.WriteByte(b[0])
				for k := r.Intn(2) + 1; k > 0; k-- {
					input.WriteString(escapes[r.Intn(len(escapes))])
				}
				input.WriteByte(b[1])
			} else {
				input.Write(b)
			}
			if r.Intn(4) == 0 {
				input.WriteString(escapes[r.Intn(len(escapes))])
			}
		}

		out, err := NewConverter(DefaultWindow, Placement(n%2)).Convert(input.Bytes())
		if err != nil {
			t.Fatalf("Convert(%q) = _, %v", input.Bytes(), err)
		}
		back, err := enc.Bytes(ansi.Strip(out))
		if err != nil {
			t.Fatalf("re-encoding %q: %v", out, err)
		}
		if !bytes.Equal(back, plain.Bytes()) {
			t.Fatalf("round trip of %q = %q; want %q", input.Bytes(), back, plain.Bytes())
		}
	}
}
