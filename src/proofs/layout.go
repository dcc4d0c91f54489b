// Package proofs binds recovery claims to Groth16 proofs: it defines the
// canonical public-input layouts, parses snarkjs-shaped proof encodings into
// native curve types, validates verifying-key artifacts and exposes the
// Verify / VerifyWithBinding operations.
package proofs

import "github.com/web3-authn/zk-email-verifier/src/header"

// Layout identifies the public-input schema a verifying key was set up for.
// The two layouts are not interchangeable; a deployed artifact pins exactly
// one, and the value travels inside the artifact rather than by caller
// convention.
type Layout uint32

const (
	// LayoutPlaintextSender exposes the packed from address in the clear:
	// request_id[9] account_id[9] public_key[9] from_email[9] timestamp[9]
	// signer_key[17] signature[17].
	LayoutPlaintextSender Layout = 1

	// LayoutHashedSender replaces from_email[9] with the 32-byte sender
	// binding digest, one byte per element.
	LayoutHashedSender Layout = 2
)

// BindingDigestLen is the number of elements the hashed-sender layout spends
// on the digest.
const BindingDigestLen = 32

func (l Layout) Valid() bool {
	return l == LayoutPlaintextSender || l == LayoutHashedSender
}

func (l Layout) String() string {
	switch l {
	case LayoutPlaintextSender:
		return "plaintext-sender"
	case LayoutHashedSender:
		return "hashed-sender"
	default:
		return "unknown"
	}
}

// Slot offsets, in elements. Field order is fixed; only the width of the
// sender slot differs between layouts.
func (l Layout) RequestIDOffset() int { return 0 }

func (l Layout) AccountIDOffset() int { return header.PackedSubstringFieldLen }

func (l Layout) PublicKeyOffset() int { return 2 * header.PackedSubstringFieldLen }

func (l Layout) SenderOffset() int { return 3 * header.PackedSubstringFieldLen }

func (l Layout) senderWidth() int {
	if l == LayoutHashedSender {
		return BindingDigestLen
	}
	return header.PackedSubstringFieldLen
}

func (l Layout) TimestampOffset() int { return l.SenderOffset() + l.senderWidth() }

func (l Layout) SignerKeyOffset() int {
	return l.TimestampOffset() + header.PackedSubstringFieldLen
}

func (l Layout) SignatureOffset() int {
	return l.SignerKeyOffset() + header.SignerFieldLen
}

// PublicInputCount is the exact number of public inputs the layout demands:
// 79 for plaintext-sender, 102 for hashed-sender.
func (l Layout) PublicInputCount() int {
	return l.SignatureOffset() + header.SignerFieldLen
}
