package header

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// SignerFieldLen is the number of field elements the signature scheme uses to
// encode the signer key and the signature among the public inputs.
const SignerFieldLen = 17

// VerifiedHeader is the output of the document-authentication step: the
// signature-covered header bytes plus the signer key and signature already
// split into public-input field elements.
type VerifiedHeader struct {
	Buffer    *HeaderBuffer
	SignerKey [SignerFieldLen]fr.Element
	Signature [SignerFieldLen]fr.Element
}

// VerifiedHeaderOracle authenticates a raw message and yields the trusted
// header buffer. Implementations live outside this module (DKIM verification,
// test fixtures); the pipeline only depends on this capability.
type VerifiedHeaderOracle interface {
	VerifyDocument(raw []byte) (*VerifiedHeader, error)
}
