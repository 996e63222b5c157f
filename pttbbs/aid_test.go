package pttbbs

import (
	"testing"
)

func TestAidConvert(t *testing.T) {
	checkMatch(t, "", "M.0.A.000")
	checkMatch(t, "1HNXB7zo", "M.1365119687.A.F72")
	checkMatch(t, "53HvTzpa", "G.1128765309.A.CE4")
	checkMatch(t, "1KLschD-", "M.1415014827.A.37E")
	checkMatch(t, "1KL8iv_2", "M.1414826809.A.FC2")
}

func checkMatch(t *testing.T, aidc, fn string) {
	aid, err := ParseAid(aidc)
	if err != nil {
		t.Error(err)
	}
	if tfn := aid.Filename(); tfn != fn {
		t.Error(aidc, "expected", fn, "got", tfn)
	}
	if str := aid.String(); str != aidc {
		t.Error(aidc, "convert back", "got", str)
	}
	back, err := AidFromFilename(fn)
	if err != nil {
		t.Error(fn, err)
	}
	if back != aid {
		t.Error(fn, "expected aid", aidc, "got", back)
	}
}

func TestAidHashPrefix(t *testing.T) {
	aid, err := ParseAid("#1HNXB7zo")
	if err != nil {
		t.Fatal(err)
	}
	if fn := aid.Filename(); fn != "M.1365119687.A.F72" {
		t.Error("got", fn)
	}
}

func TestAidTooLong(t *testing.T) {
	_, err := ParseAid("1234567890a")
	if err == nil {
		t.Fail()
	}
}

func TestAidInvalid(t *testing.T) {
	_, err := ParseAid("!@#$%^")
	if err == nil {
		t.Fail()
	}
}

func TestAidFromFilenameInvalid(t *testing.T) {
	for _, fn := range []string{"", "M.1", "X.1.A.000", "M.x.A.000", "M.1.B.000", "M.1.A.FFFF", "M.1.A.000.1"} {
		if _, err := AidFromFilename(fn); err == nil {
			t.Error(fn, "expected error")
		}
	}
}
