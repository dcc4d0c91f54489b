package header

import (
	"bytes"
	"errors"
	"fmt"
)

// Static prefixes every claimed location is checked against. The upstream
// signature canonicalization lowercases header names, so the verified buffer
// carries these exact bytes.
const (
	SubjectPrefix = "subject:recover-"
	FromPrefix    = "from:"
	DatePrefix    = "date:"
	PublicKeyTag  = "ed25519:"
)

var ErrMalformedHeader = errors.New("malformed header")

// FieldLocation is a byte range inside the header buffer.
type FieldLocation struct {
	Start  int
	Length int
}

func (fl FieldLocation) End() int {
	return fl.Start + fl.Length
}

// Locations carries the three recognized header lines plus the bound
// substrings inside them. Line locations start at the line's first byte;
// value locations cover exactly the extracted substring.
type Locations struct {
	Subject FieldLocation
	From    FieldLocation
	Date    FieldLocation

	RequestID   FieldLocation
	AccountID   FieldLocation
	PublicKey   FieldLocation
	FromAddress FieldLocation
	DateValue   FieldLocation
}

// Locate scans the verified buffer for the subject, from and date lines and
// returns their byte offsets. All offsets are relative to the full buffer.
// A missing or unparsable line yields ErrMalformedHeader; proof generation
// must abort in that case.
func Locate(hb *HeaderBuffer) (Locations, error) {
	var locs Locations
	var haveSubject, haveFrom, haveDate bool

	data := hb.Bytes()
	lineStart := 0
	for lineStart < len(data) {
		rel := bytes.Index(data[lineStart:], []byte{'\r', '\n'})
		lineEnd := len(data)
		next := lineEnd
		if rel >= 0 {
			lineEnd = lineStart + rel
			next = lineEnd + 2
		}
		line := data[lineStart:lineEnd]

		switch {
		case !haveSubject && hasFoldPrefix(line, "subject:"):
			if err := locateSubject(lineStart, line, &locs); err != nil {
				return Locations{}, err
			}
			haveSubject = true
		case !haveFrom && hasFoldPrefix(line, FromPrefix):
			if err := locateFrom(lineStart, line, &locs); err != nil {
				return Locations{}, err
			}
			haveFrom = true
		case !haveDate && hasFoldPrefix(line, DatePrefix):
			if err := locateDate(lineStart, line, &locs); err != nil {
				return Locations{}, err
			}
			haveDate = true
		}

		lineStart = next
	}

	if !haveSubject {
		return Locations{}, fmt.Errorf("%w: no subject line", ErrMalformedHeader)
	}
	if !haveFrom {
		return Locations{}, fmt.Errorf("%w: no from line", ErrMalformedHeader)
	}
	if !haveDate {
		return Locations{}, fmt.Errorf("%w: no date line", ErrMalformedHeader)
	}
	return locs, nil
}

// locateSubject parses `subject:recover-<requestId> <accountId> ed25519:<publicKey>`.
// Lengths are byte lengths, so multi-byte values survive intact.
func locateSubject(lineStart int, line []byte, locs *Locations) error {
	rest := line[len("subject:"):]
	if !bytes.HasPrefix(rest, []byte("recover-")) {
		return fmt.Errorf("%w: subject is not a recovery request", ErrMalformedHeader)
	}

	value := line[len(SubjectPrefix):]
	sp1 := bytes.IndexByte(value, ' ')
	if sp1 <= 0 {
		return fmt.Errorf("%w: subject missing request id", ErrMalformedHeader)
	}
	afterReq := value[sp1+1:]
	sp2 := bytes.IndexByte(afterReq, ' ')
	if sp2 <= 0 {
		return fmt.Errorf("%w: subject missing account id", ErrMalformedHeader)
	}
	keyPart := afterReq[sp2+1:]
	if !bytes.HasPrefix(keyPart, []byte(PublicKeyTag)) {
		return fmt.Errorf("%w: subject missing %q tag", ErrMalformedHeader, PublicKeyTag)
	}
	key := keyPart[len(PublicKeyTag):]
	if len(key) == 0 {
		return fmt.Errorf("%w: subject missing public key", ErrMalformedHeader)
	}

	valueStart := lineStart + len(SubjectPrefix)
	locs.Subject = FieldLocation{Start: lineStart, Length: len(line)}
	locs.RequestID = FieldLocation{Start: valueStart, Length: sp1}
	locs.AccountID = FieldLocation{Start: valueStart + sp1 + 1, Length: sp2}
	locs.PublicKey = FieldLocation{
		Start:  valueStart + sp1 + 1 + sp2 + 1 + len(PublicKeyTag),
		Length: len(key),
	}
	return nil
}

// locateFrom binds the angle-bracketed address when present, otherwise the
// first whitespace-delimited token of the value.
func locateFrom(lineStart int, line []byte, locs *Locations) error {
	value := line[len(FromPrefix):]
	valueStart := lineStart + len(FromPrefix)

	if lb := bytes.IndexByte(value, '<'); lb >= 0 {
		rb := bytes.IndexByte(value[lb+1:], '>')
		if rb <= 0 {
			return fmt.Errorf("%w: unterminated from address", ErrMalformedHeader)
		}
		locs.From = FieldLocation{Start: lineStart, Length: len(line)}
		locs.FromAddress = FieldLocation{Start: valueStart + lb + 1, Length: rb}
		return nil
	}

	i := 0
	for i < len(value) && (value[i] == ' ' || value[i] == '\t') {
		i++
	}
	j := i
	for j < len(value) && value[j] != ' ' && value[j] != '\t' {
		j++
	}
	if j == i {
		return fmt.Errorf("%w: empty from address", ErrMalformedHeader)
	}
	locs.From = FieldLocation{Start: lineStart, Length: len(line)}
	locs.FromAddress = FieldLocation{Start: valueStart + i, Length: j - i}
	return nil
}

func locateDate(lineStart int, line []byte, locs *Locations) error {
	value := line[len(DatePrefix):]
	i := 0
	for i < len(value) && (value[i] == ' ' || value[i] == '\t') {
		i++
	}
	if i == len(value) {
		return fmt.Errorf("%w: empty date value", ErrMalformedHeader)
	}
	locs.Date = FieldLocation{Start: lineStart, Length: len(line)}
	locs.DateValue = FieldLocation{
		Start:  lineStart + len(DatePrefix) + i,
		Length: len(value) - i,
	}
	return nil
}

// hasFoldPrefix reports whether line starts with prefix, comparing ASCII
// letters case-insensitively. Header names arrive lowercased after
// canonicalization, but locating stays tolerant; the anchored checks enforce
// the exact bytes afterwards.
func hasFoldPrefix(line []byte, prefix string) bool {
	if len(line) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		a := line[i]
		b := prefix[i]
		if a >= 'A' && a <= 'Z' {
			a += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}
