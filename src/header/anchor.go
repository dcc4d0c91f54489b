package header

import (
	"errors"
	"fmt"
)

var ErrAnchorViolation = errors.New("anchor violation")

// VerifyAnchored validates claimed field locations against the raw buffer
// before anything derived from them may become a public output. It re-proves
// what Locate found: each line starts a genuine header line (preceded by CRLF
// unless at the buffer origin), carries its exact static prefix, the subject
// sub-fields sit where the structure demands, and the from gap hides no line
// break. A prover pointing locations at body text or an unrelated line fails
// here and no proof is produced.
func VerifyAnchored(hb *HeaderBuffer, locs Locations) error {
	if err := verifyLine(hb, locs.Subject, SubjectPrefix, "subject"); err != nil {
		return err
	}
	if err := verifyLine(hb, locs.From, FromPrefix, "from"); err != nil {
		return err
	}
	if err := verifyLine(hb, locs.Date, DatePrefix, "date"); err != nil {
		return err
	}
	// Bounds come before the structural scans so a wild location fails fast
	// instead of walking padding reads.
	if err := verifyValueBounds(hb, locs); err != nil {
		return err
	}
	if err := verifySubjectStructure(hb, locs); err != nil {
		return err
	}
	return verifyFromGap(hb, locs)
}

// verifyLine applies the anchor and static prefix checks for one line.
func verifyLine(hb *HeaderBuffer, loc FieldLocation, prefix, name string) error {
	if loc.Start < 0 || loc.Length < 0 || loc.End() > hb.Len() {
		return fmt.Errorf("%w: %s location out of bounds", ErrAnchorViolation, name)
	}

	if loc.Start != 0 {
		if loc.Start < 2 {
			return fmt.Errorf("%w: %s line not anchored to a line break", ErrAnchorViolation, name)
		}
		if hb.ByteAt(loc.Start-2) != '\r' || hb.ByteAt(loc.Start-1) != '\n' {
			return fmt.Errorf("%w: %s line not anchored to a line break", ErrAnchorViolation, name)
		}
	}

	if loc.Length < len(prefix) {
		return fmt.Errorf("%w: %s line shorter than prefix", ErrAnchorViolation, name)
	}
	for i := 0; i < len(prefix); i++ {
		if hb.ByteAt(loc.Start+i) != prefix[i] {
			return fmt.Errorf("%w: %s prefix mismatch at byte %d", ErrAnchorViolation, name, i)
		}
	}
	return nil
}

// verifySubjectStructure pins the three subject sub-fields: the request id
// starts right after the prefix, single spaces separate the tokens, and the
// key tag sits immediately before the public key.
func verifySubjectStructure(hb *HeaderBuffer, locs Locations) error {
	if locs.RequestID.Start != locs.Subject.Start+len(SubjectPrefix) {
		return fmt.Errorf("%w: request id not adjacent to subject prefix", ErrAnchorViolation)
	}
	if locs.RequestID.Length <= 0 {
		return fmt.Errorf("%w: empty request id", ErrAnchorViolation)
	}
	if hb.ByteAt(locs.RequestID.End()) != ' ' {
		return fmt.Errorf("%w: request id not followed by a single space", ErrAnchorViolation)
	}
	if locs.AccountID.Start != locs.RequestID.End()+1 {
		return fmt.Errorf("%w: account id not adjacent to request id", ErrAnchorViolation)
	}
	if locs.AccountID.Length <= 0 {
		return fmt.Errorf("%w: empty account id", ErrAnchorViolation)
	}
	if hb.ByteAt(locs.AccountID.End()) != ' ' {
		return fmt.Errorf("%w: account id not followed by a single space", ErrAnchorViolation)
	}
	tagStart := locs.AccountID.End() + 1
	for i := 0; i < len(PublicKeyTag); i++ {
		if hb.ByteAt(tagStart+i) != PublicKeyTag[i] {
			return fmt.Errorf("%w: missing %q tag before public key", ErrAnchorViolation, PublicKeyTag)
		}
	}
	if locs.PublicKey.Start != tagStart+len(PublicKeyTag) {
		return fmt.Errorf("%w: public key not adjacent to key tag", ErrAnchorViolation)
	}
	if locs.PublicKey.Length <= 0 {
		return fmt.Errorf("%w: empty public key", ErrAnchorViolation)
	}
	return nil
}

// verifyFromGap rejects CR and LF anywhere between the end of "from:" and the
// extracted address, so the address cannot come from a following line. NUL
// bytes are exempt: they only occur as buffer padding, never inside a
// signature-covered line.
func verifyFromGap(hb *HeaderBuffer, locs Locations) error {
	gapStart := locs.From.Start + len(FromPrefix)
	if locs.FromAddress.Start < gapStart {
		return fmt.Errorf("%w: from address precedes its header value", ErrAnchorViolation)
	}
	for i := gapStart; i < locs.FromAddress.Start; i++ {
		b := hb.ByteAt(i)
		if b == '\r' || b == '\n' {
			return fmt.Errorf("%w: line break inside from gap", ErrAnchorViolation)
		}
	}
	return nil
}

// verifyValueBounds checks every bound substring stays inside the actual
// header content.
func verifyValueBounds(hb *HeaderBuffer, locs Locations) error {
	values := []struct {
		name string
		loc  FieldLocation
	}{
		{"request id", locs.RequestID},
		{"account id", locs.AccountID},
		{"public key", locs.PublicKey},
		{"from address", locs.FromAddress},
		{"date value", locs.DateValue},
	}
	for _, v := range values {
		if v.loc.Start < 0 || v.loc.Length < 0 || v.loc.End() > hb.Len() {
			return fmt.Errorf("%w: %s out of bounds", ErrAnchorViolation, v.name)
		}
	}
	return nil
}
