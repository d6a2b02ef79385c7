package wire

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		format  byte
		payload []byte
	}{
		{1, nil},
		{2, []byte("hello")},
		{255, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := Encode(tc.format, tc.payload)
		if !IsFramed(enc) {
			t.Fatal("IsFramed = false for an encoded frame")
		}
		f, p, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		if f != tc.format {
			t.Fatalf("format mismatch: got %d want %d", f, tc.format)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := Encode(1, []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestCorruptHeadersAndPayload(t *testing.T) {
	enc := Encode(3, []byte("abc"))

	// bad magic
	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// flipped payload bit
	badSum := append([]byte(nil), enc...)
	badSum[hdrLen] ^= 0x01
	if _, _, err := Decode(badSum); err != ErrCorrupt {
		t.Fatalf("expected checksum error, got %v", err)
	}

	// truncated
	for n := 0; n < len(enc); n++ {
		if _, _, err := Decode(enc[:n]); err == nil {
			t.Fatalf("expected error for truncated frame of %d bytes", n)
		}
	}
}

func TestUnframedInput(t *testing.T) {
	if IsFramed([]byte(`{"version": 1}`)) {
		t.Fatal("JSON must not look framed")
	}
}
