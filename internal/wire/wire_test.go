package wire

import (
	"bytes"
	"testing"
)

func TestPageRoundTrip(t *testing.T) {
	payload := []byte(`{"cursor":"abc","items":[1,2,3]}`)
	b := EncodePage(7, payload)

	idx, got, err := DecodePage(b)
	if err != nil {
		t.Fatalf("DecodePage: %v", err)
	}
	if idx != 7 {
		t.Fatalf("index = %d, want 7", idx)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %q", got)
	}
}

func TestPageEmptyPayload(t *testing.T) {
	b := EncodePage(0, nil)
	idx, got, err := DecodePage(b)
	if err != nil {
		t.Fatalf("DecodePage: %v", err)
	}
	if idx != 0 || len(got) != 0 {
		t.Fatalf("got idx=%d len=%d", idx, len(got))
	}
}

// Strict framing: trailing bytes are corruption.
func TestDecodePageRejectsTrailing(t *testing.T) {
	b := EncodePage(1, []byte("x"))
	b = append(b, 0xDE, 0xAD)
	if _, _, err := DecodePage(b); err == nil {
		t.Fatalf("DecodePage should reject trailing bytes")
	}
}

func TestDecodePageRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("short"),
		[]byte("not-a-wire-format-entry-at-all"),
	}
	for _, b := range cases {
		if _, _, err := DecodePage(b); err == nil {
			t.Fatalf("DecodePage should reject %q", b)
		}
	}
}

func TestDecodePageRejectsWrongKind(t *testing.T) {
	b := EncodePage(3, []byte("v"))
	b[5] = 0xFF // unknown kind
	if _, _, err := DecodePage(b); err == nil {
		t.Fatalf("DecodePage should reject unknown kind")
	}
}

func TestDecodePageRejectsTruncatedPayload(t *testing.T) {
	b := EncodePage(2, []byte("payload"))
	b = b[:len(b)-3]
	if _, _, err := DecodePage(b); err == nil {
		t.Fatalf("DecodePage should reject truncated payload")
	}
}
