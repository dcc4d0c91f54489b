package header

import (
	"errors"
	"testing"
)

func locatedScenario(t *testing.T) (*HeaderBuffer, Locations) {
	t.Helper()
	hb := scenarioBuffer(t)
	locs, err := Locate(hb)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	return hb, locs
}

func TestVerifyAnchoredAcceptsScenario(t *testing.T) {
	hb, locs := locatedScenario(t)
	if err := VerifyAnchored(hb, locs); err != nil {
		t.Fatalf("VerifyAnchored rejected a well-formed header: %v", err)
	}
}

func TestVerifyAnchoredAcceptsLineAtBufferOrigin(t *testing.T) {
	raw := "subject:recover-r1 a.near ed25519:K\r\n" +
		"from:a <a@b.c>\r\n" +
		"date: Mon, 01 Jan 2024 00:00:00 +0000\r\n"
	hb, err := NewHeaderBuffer([]byte(raw))
	if err != nil {
		t.Fatalf("NewHeaderBuffer failed: %v", err)
	}
	locs, err := Locate(hb)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if err := VerifyAnchored(hb, locs); err != nil {
		t.Fatalf("VerifyAnchored rejected origin-anchored subject: %v", err)
	}
}

func TestVerifyAnchoredRejectsUnanchoredLine(t *testing.T) {
	// The subject text also appears mid-line; pointing the location there
	// must fail because the preceding bytes are not CRLF.
	raw := "x: subject:recover-req42 alice.near ed25519:PUBKEY123\r\n" +
		scenarioHeader
	hb, err := NewHeaderBuffer([]byte(raw))
	if err != nil {
		t.Fatalf("NewHeaderBuffer failed: %v", err)
	}
	locs, err := Locate(hb)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	shift := locs.Subject.Start - len("x: ")
	forged := locs
	forged.Subject.Start -= shift
	forged.RequestID.Start -= shift
	forged.AccountID.Start -= shift
	forged.PublicKey.Start -= shift
	if err := VerifyAnchored(hb, forged); !errors.Is(err, ErrAnchorViolation) {
		t.Fatalf("got %v, want ErrAnchorViolation", err)
	}
}

func TestVerifyAnchoredRejectsStartInsideAnchor(t *testing.T) {
	raw := "\nsubject:recover-r1 a.near ed25519:K\r\n" +
		"from:a <a@b.c>\r\n" +
		"date: x\r\n"
	hb, err := NewHeaderBuffer([]byte(raw))
	if err != nil {
		t.Fatalf("NewHeaderBuffer failed: %v", err)
	}
	locs := Locations{
		Subject:   FieldLocation{Start: 1, Length: len("subject:recover-r1 a.near ed25519:K")},
		RequestID: FieldLocation{Start: 1 + len(SubjectPrefix), Length: 2},
	}
	if err := VerifyAnchored(hb, locs); !errors.Is(err, ErrAnchorViolation) {
		t.Fatalf("got %v, want ErrAnchorViolation", err)
	}
}

func TestVerifyAnchoredRejectsMutatedPrefix(t *testing.T) {
	_, locs := locatedScenario(t)

	for i := 0; i < len(SubjectPrefix); i++ {
		raw := []byte(scenarioHeader)
		raw[locs.Subject.Start+i] ^= 0x01
		hb, err := NewHeaderBuffer(raw)
		if err != nil {
			t.Fatalf("NewHeaderBuffer failed: %v", err)
		}
		if err := VerifyAnchored(hb, locs); !errors.Is(err, ErrAnchorViolation) {
			t.Errorf("prefix byte %d mutated: got %v, want ErrAnchorViolation", i, err)
		}
	}
}

func TestVerifyAnchoredRejectsLineBreakInFromGap(t *testing.T) {
	for _, b := range []byte{'\r', '\n'} {
		raw := "subject:recover-r1 a.near ed25519:K\r\n" +
			"from:A" + string(b) + "B <a@b.c>\r\n" +
			"date: x\r\n"
		hb, err := NewHeaderBuffer([]byte(raw))
		if err != nil {
			t.Fatalf("NewHeaderBuffer failed: %v", err)
		}
		locs, err := Locate(hb)
		if err != nil {
			// A lone LF splits no CRLF line, Locate still binds the
			// bracketed address on the same logical line.
			t.Fatalf("Locate failed: %v", err)
		}
		if err := VerifyAnchored(hb, locs); !errors.Is(err, ErrAnchorViolation) {
			t.Errorf("gap byte %q: got %v, want ErrAnchorViolation", b, err)
		}
	}
}

func TestVerifyAnchoredAllowsNulInFromGap(t *testing.T) {
	hb, locs := locatedScenario(t)

	// Zero bytes in the gap are buffer padding, not a line break.
	raw := make([]byte, hb.Len())
	copy(raw, hb.Bytes())
	raw[locs.From.Start+len(FromPrefix)] = 0
	patched, err := NewHeaderBuffer(raw)
	if err != nil {
		t.Fatalf("NewHeaderBuffer failed: %v", err)
	}
	if err := VerifyAnchored(patched, locs); err != nil {
		t.Fatalf("NUL in from gap rejected: %v", err)
	}
}

func TestVerifyAnchoredRejectsNonAdjacentSubjectFields(t *testing.T) {
	hb, locs := locatedScenario(t)

	mutations := []struct {
		name   string
		mutate func(*Locations)
	}{
		{"request id shifted", func(l *Locations) { l.RequestID.Start++ }},
		{"account id shifted", func(l *Locations) { l.AccountID.Start++ }},
		{"public key shifted", func(l *Locations) { l.PublicKey.Start++ }},
		{"empty request id", func(l *Locations) { l.RequestID.Length = 0 }},
		{"account id overruns space", func(l *Locations) { l.AccountID.Length++ }},
	}
	for _, m := range mutations {
		forged := locs
		m.mutate(&forged)
		if err := VerifyAnchored(hb, forged); !errors.Is(err, ErrAnchorViolation) {
			t.Errorf("%s: got %v, want ErrAnchorViolation", m.name, err)
		}
	}
}

func TestVerifyAnchoredRejectsOutOfBoundsValue(t *testing.T) {
	hb, locs := locatedScenario(t)

	forged := locs
	forged.DateValue.Length = hb.Len()
	if err := VerifyAnchored(hb, forged); !errors.Is(err, ErrAnchorViolation) {
		t.Fatalf("got %v, want ErrAnchorViolation", err)
	}
}

func TestVerifyAnchoredRejectsFarOutOfBoundsFromAddress(t *testing.T) {
	hb, locs := locatedScenario(t)

	// A from-address location far past the buffer must be rejected by the
	// bounds check, not scanned byte by byte.
	forged := locs
	forged.FromAddress.Start = 1 << 30
	if err := VerifyAnchored(hb, forged); !errors.Is(err, ErrAnchorViolation) {
		t.Fatalf("got %v, want ErrAnchorViolation", err)
	}
}
