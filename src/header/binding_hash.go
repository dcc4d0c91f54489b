package header

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
)

// The sender binding digest commits to sender and account together without
// exposing the sender address: preimage = lower(from) || '|' || lower(account).
const (
	BindingSeparator      = '|'
	MaxBindingPreimageLen = 2*MaxPackedSubstringLen + 1
	hashBlockSize         = 64
)

var ErrBindingPreimageTooLong = errors.New("binding preimage too long")

// BindingPreimage builds the case-folded preimage. Only ASCII A-Z fold;
// every other byte passes through unchanged.
func BindingPreimage(fromEmail, accountID []byte) ([]byte, error) {
	l := len(fromEmail) + 1 + len(accountID)
	if l > MaxBindingPreimageLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrBindingPreimageTooLong, l, MaxBindingPreimageLen)
	}

	preimage := make([]byte, 0, l)
	preimage = appendFolded(preimage, fromEmail)
	preimage = append(preimage, BindingSeparator)
	preimage = appendFolded(preimage, accountID)
	return preimage, nil
}

func appendFolded(dst, src []byte) []byte {
	for _, b := range src {
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		dst = append(dst, b)
	}
	return dst
}

// BindingBlockCount is the number of 64-byte compression blocks a preimage of
// length l pads into: the smallest block count fitting l, the 0x80 marker and
// the 8-byte bit length.
func BindingBlockCount(l int) int {
	return (l + 9 + hashBlockSize - 1) / hashBlockSize
}

// PadBindingPreimage applies the Merkle-Damgard padding the compression
// function expects: 0x80, zeros, then the bit length as a big-endian uint64,
// totalling BindingBlockCount(len(preimage)) * 64 bytes.
func PadBindingPreimage(preimage []byte) []byte {
	padded := make([]byte, BindingBlockCount(len(preimage))*hashBlockSize)
	copy(padded, preimage)
	padded[len(preimage)] = 0x80
	binary.BigEndian.PutUint64(padded[len(padded)-8:], uint64(len(preimage))*8)
	return padded
}

// SenderBindingHash computes the 32-byte binding digest. Deterministic and
// case-insensitive in both inputs.
func SenderBindingHash(fromEmail, accountID []byte) ([32]byte, error) {
	preimage, err := BindingPreimage(fromEmail, accountID)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(preimage), nil
}
