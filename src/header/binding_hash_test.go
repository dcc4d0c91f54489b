package header

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"
)

func TestSenderBindingHashDeterministicAndCaseInsensitive(t *testing.T) {
	a, err := SenderBindingHash([]byte("Alice@Example.com"), []byte("Bob"))
	if err != nil {
		t.Fatalf("SenderBindingHash failed: %v", err)
	}
	b, err := SenderBindingHash([]byte("alice@example.com"), []byte("BOB"))
	if err != nil {
		t.Fatalf("SenderBindingHash failed: %v", err)
	}
	if a != b {
		t.Error("case variants should hash identically")
	}

	c, err := SenderBindingHash([]byte("alice@example.com"), []byte("eve"))
	if err != nil {
		t.Fatalf("SenderBindingHash failed: %v", err)
	}
	if a == c {
		t.Error("different accounts should hash differently")
	}
}

func TestSenderBindingHashMatchesManualPreimage(t *testing.T) {
	got, err := SenderBindingHash([]byte("alice@example.com"), []byte("alice.near"))
	if err != nil {
		t.Fatalf("SenderBindingHash failed: %v", err)
	}
	want := sha256.Sum256([]byte("alice@example.com|alice.near"))
	if got != want {
		t.Error("digest differs from direct preimage hash")
	}
}

func TestBindingPreimageFoldsOnlyAsciiLetters(t *testing.T) {
	preimage, err := BindingPreimage([]byte("A.Z@[\\]^_`{"), []byte("0-9"))
	if err != nil {
		t.Fatalf("BindingPreimage failed: %v", err)
	}
	if string(preimage) != "a.z@[\\]^_`{|0-9" {
		t.Errorf("got %q", preimage)
	}
}

func TestBindingPreimageRejectsOversizedInput(t *testing.T) {
	long := bytes.Repeat([]byte{'a'}, MaxPackedSubstringLen+1)
	if _, err := BindingPreimage(long, bytes.Repeat([]byte{'b'}, MaxPackedSubstringLen)); !errors.Is(err, ErrBindingPreimageTooLong) {
		t.Fatalf("got %v, want ErrBindingPreimageTooLong", err)
	}
}

func TestBindingBlockCountThresholds(t *testing.T) {
	// One block holds up to 55 preimage bytes; each 64 after that adds one.
	cases := []struct {
		length int
		blocks int
	}{
		{0, 1}, {55, 1}, {56, 2}, {119, 2}, {120, 3},
		{183, 3}, {184, 4}, {503, 8}, {504, 9}, {511, 9},
	}
	for _, tc := range cases {
		if got := BindingBlockCount(tc.length); got != tc.blocks {
			t.Errorf("length %d: got %d blocks, want %d", tc.length, got, tc.blocks)
		}
	}
}

func TestPadBindingPreimageLayout(t *testing.T) {
	preimage := []byte("alice@example.com|alice.near")
	padded := PadBindingPreimage(preimage)

	if len(padded) != BindingBlockCount(len(preimage))*64 {
		t.Fatalf("padded length %d", len(padded))
	}
	if !bytes.HasPrefix(padded, preimage) {
		t.Error("padding must preserve the preimage")
	}
	if padded[len(preimage)] != 0x80 {
		t.Error("missing 0x80 marker")
	}
	for _, b := range padded[len(preimage)+1 : len(padded)-8] {
		if b != 0 {
			t.Error("zero-fill region not zero")
			break
		}
	}
	bitLen := uint64(padded[len(padded)-1]) | uint64(padded[len(padded)-2])<<8
	if bitLen != uint64(len(preimage))*8 {
		t.Errorf("bit length field: got %d, want %d", bitLen, len(preimage)*8)
	}
}
