package internal

import (
	"bytes"
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	want := time.Date(2024, time.March, 5, 9, 8, 7, 0, time.FixedZone("", -7*3600))
	for _, s := range []string{
		" 5-Mar-2024 09:08:07 -0700",
		"05-Mar-2024 09:08:07 -0700",
		"5-Mar-2024 09:08:07 -0700",
	} {
		got, err := ParseDateTime(s)
		if err != nil {
			t.Errorf("ParseDateTime(%q) 出错: %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDateTime(%q) = %v, want %v", s, got, want)
		}
	}

	if _, err := ParseDateTime("yesterday"); err == nil {
		t.Errorf("ParseDateTime() 接受了非法日期")
	}
}

func TestSASL(t *testing.T) {
	for _, b := range [][]byte{{}, []byte("\x00user\x00pass")} {
		s := EncodeSASL(b)
		got, err := DecodeSASL(s)
		if err != nil {
			t.Fatalf("DecodeSASL(%q) 出错: %v", s, err)
		}
		if !bytes.Equal(got, b) {
			t.Errorf("DecodeSASL(EncodeSASL(%q)) = %q", b, got)
		}
	}
	if EncodeSASL(nil) != "=" {
		t.Errorf("EncodeSASL(nil) = %q, want \"=\"", EncodeSASL(nil))
	}
}
