package header

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Packing constants. 31 bytes fit a BN254 scalar with headroom, and 255-byte
// substrings therefore take 9 elements. The verifier recomputes with the same
// constants, so they are part of the protocol.
const (
	PackedBytesPerField     = 31
	MaxPackedSubstringLen   = 255
	PackedSubstringFieldLen = 9
)

var ErrLengthOutOfRange = errors.New("substring length out of range")

// PackedValue is one bounded substring encoded as public-input field elements.
// Element i is the big-endian integer of the 31-byte chunk starting at i*31,
// zero-extended past the substring's end.
type PackedValue [PackedSubstringFieldLen]fr.Element

// Pack encodes length bytes of buf starting at start.
func Pack(buf []byte, start, length int) (PackedValue, error) {
	var packed PackedValue
	if length < 0 || length > MaxPackedSubstringLen {
		return packed, fmt.Errorf("%w: %d", ErrLengthOutOfRange, length)
	}
	if start < 0 || start+length > len(buf) {
		return packed, fmt.Errorf("%w: range [%d, %d) outside buffer", ErrLengthOutOfRange, start, start+length)
	}

	var value big.Int
	for i := 0; i < PackedSubstringFieldLen; i++ {
		var chunk [PackedBytesPerField]byte
		from := i * PackedBytesPerField
		if from < length {
			to := from + PackedBytesPerField
			if to > length {
				to = length
			}
			copy(chunk[:], buf[start+from:start+to])
		}
		value.SetBytes(chunk[:])
		packed[i].SetBigInt(&value)
	}
	return packed, nil
}

// PackLocation packs the bound substring at loc out of the header buffer.
func PackLocation(hb *HeaderBuffer, loc FieldLocation) (PackedValue, error) {
	return Pack(hb.Bytes(), loc.Start, loc.Length)
}

// PackString packs a verifier-supplied plaintext claim.
func PackString(s string) (PackedValue, error) {
	return Pack([]byte(s), 0, len(s))
}

// Unpack inverts Pack for a substring of the given length. It fails when an
// element does not fit 31 bytes or when bytes past length are not zero, so a
// malformed public input cannot silently decode.
func Unpack(packed PackedValue, length int) ([]byte, error) {
	if length < 0 || length > MaxPackedSubstringLen {
		return nil, fmt.Errorf("%w: %d", ErrLengthOutOfRange, length)
	}

	raw := make([]byte, 0, PackedSubstringFieldLen*PackedBytesPerField)
	for i := range packed {
		b := packed[i].Bytes()
		if b[0] != 0 {
			return nil, fmt.Errorf("packed element %d exceeds %d bytes", i, PackedBytesPerField)
		}
		raw = append(raw, b[1:]...)
	}
	for _, b := range raw[length:] {
		if b != 0 {
			return nil, fmt.Errorf("nonzero padding past substring length %d", length)
		}
	}
	return raw[:length], nil
}

// UnpackTrimmed decodes a packed substring whose length is not carried
// separately, trimming the trailing zero padding.
func UnpackTrimmed(elements []fr.Element) ([]byte, error) {
	if len(elements) != PackedSubstringFieldLen {
		return nil, fmt.Errorf("expected %d packed elements, got %d", PackedSubstringFieldLen, len(elements))
	}
	raw := make([]byte, 0, PackedSubstringFieldLen*PackedBytesPerField)
	for i := range elements {
		b := elements[i].Bytes()
		if b[0] != 0 {
			return nil, fmt.Errorf("packed element %d exceeds %d bytes", i, PackedBytesPerField)
		}
		raw = append(raw, b[1:]...)
	}
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return raw[:end], nil
}
