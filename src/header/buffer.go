// Package header implements the anchored field-extraction protocol over a
// DKIM-verified email header buffer: locating the recovery fields, validating
// the claimed locations against the raw bytes, packing bounded substrings into
// BN254 scalars and hashing the sender binding.
//
// The same functions back both the proof-generation path and the verifier-side
// recomputation, so the two can never drift apart.
package header

import (
	"errors"
	"fmt"
)

// Capacity is the fixed size of a verified header buffer. Bytes past the
// actual length are zero padding.
const Capacity = 1024

var ErrHeaderTooLong = errors.New("header exceeds buffer capacity")

// HeaderBuffer holds the signature-covered header bytes for one proof request.
type HeaderBuffer struct {
	data   [Capacity]byte
	length int
}

func NewHeaderBuffer(raw []byte) (*HeaderBuffer, error) {
	if len(raw) > Capacity {
		return nil, fmt.Errorf("%w: %d > %d", ErrHeaderTooLong, len(raw), Capacity)
	}
	hb := &HeaderBuffer{length: len(raw)}
	copy(hb.data[:], raw)
	return hb, nil
}

// Len returns the actual header length, excluding zero padding.
func (hb *HeaderBuffer) Len() int {
	return hb.length
}

// Bytes returns the header content without padding.
func (hb *HeaderBuffer) Bytes() []byte {
	return hb.data[:hb.length]
}

// ByteAt returns the byte at index i, or 0 for any index in the padded region.
func (hb *HeaderBuffer) ByteAt(i int) byte {
	if i < 0 || i >= hb.length {
		return 0
	}
	return hb.data[i]
}
