package proofs

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/web3-authn/zk-email-verifier/pkg/logger"
	"github.com/web3-authn/zk-email-verifier/src/header"
	"github.com/web3-authn/zk-email-verifier/src/types/domain"
)

// ProofChecker is the capability boundary around the proving backend. The
// verifier core depends on this interface only, so tests can substitute a
// stub and the backend can change without touching binding logic.
type ProofChecker interface {
	CheckProof(proof ProofInput, publicInputs []fr.Element) error
}

// publicInputsCircuit mirrors the recovery circuit's public interface: a flat
// ordered vector of field elements. Verification only needs the public
// assignment, never the constraint system.
type publicInputsCircuit struct {
	PublicInputs []frontend.Variable `gnark:",public"`
}

func (c *publicInputsCircuit) Define(api frontend.API) error {
	return nil
}

// Groth16Checker verifies proofs against a fixed verifying key.
type Groth16Checker struct {
	vk groth16.VerifyingKey
}

func NewGroth16Checker(vk groth16.VerifyingKey) *Groth16Checker {
	return &Groth16Checker{vk: vk}
}

func (c *Groth16Checker) CheckProof(proof ProofInput, publicInputs []fr.Element) error {
	parsed, err := parseProof(proof)
	if err != nil {
		return err
	}

	assignment := &publicInputsCircuit{PublicInputs: make([]frontend.Variable, len(publicInputs))}
	for i := range publicInputs {
		assignment.PublicInputs[i] = publicInputs[i]
	}
	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("build public witness: %w", err)
	}

	return groth16.Verify(parsed, c.vk, witness)
}

// Verifier checks recovery proofs and, optionally, binds their public
// outputs to plaintext claims. All failure modes surface as a false result.
type Verifier struct {
	layout  Layout
	checker ProofChecker
	log     *logger.Logger
}

// NewVerifier builds a verifier from a loaded artifact, which pins both the
// key and the public-input layout.
func NewVerifier(artifact *VerifyingKeyArtifact) *Verifier {
	return NewVerifierWithChecker(artifact.Layout, NewGroth16Checker(artifact.Key))
}

func NewVerifierWithChecker(layout Layout, checker ProofChecker) *Verifier {
	return &Verifier{
		layout:  layout,
		checker: checker,
		log:     logger.Default(),
	}
}

func (v *Verifier) Layout() Layout {
	return v.layout
}

// Verify runs the base proof check and, on success, decodes the claim fields
// out of the public inputs. A malformed proof or input vector is an invalid
// result, never a panic or propagated error.
func (v *Verifier) Verify(proof ProofInput, publicInputs []string) domain.VerificationResult {
	elements, ok := v.checkedInputs(publicInputs)
	if !ok {
		return domain.VerificationResult{}
	}
	if err := v.checker.CheckProof(proof, elements); err != nil {
		v.log.Debugf("proof rejected: %v", err)
		return domain.VerificationResult{}
	}
	return v.decodeResult(elements)
}

// VerifyWithBinding additionally recomputes the packed and hashed claim
// values and compares them slot for slot against the public inputs. A
// well-formed proof with a non-matching claim is a normal false. Failure
// results still echo the claimed fields so the caller can log what was
// checked.
func (v *Verifier) VerifyWithBinding(proof ProofInput, publicInputs []string, claim domain.BindingClaim) domain.VerificationResult {
	echo := domain.VerificationResult{
		AccountID:        claim.AccountID,
		NewPublicKey:     claim.NewPublicKey,
		FromAddress:      claim.FromEmail,
		EmailTimestampMs: ParseEmailTimestampMs(claim.Timestamp),
	}

	elements, ok := v.checkedInputs(publicInputs)
	if !ok {
		return echo
	}
	if !v.claimMatches(elements, claim) {
		v.log.Debugf("binding claim does not match public inputs for account %s", claim.AccountID)
		return echo
	}
	if err := v.checker.CheckProof(proof, elements); err != nil {
		v.log.Debugf("proof rejected: %v", err)
		return echo
	}

	result := v.decodeResult(elements)
	if !result.Verified {
		return echo
	}
	if v.layout == LayoutHashedSender {
		// The inputs only carry the sender digest; the matched claim
		// supplies the plaintext.
		result.FromAddress = claim.FromEmail
	}
	return result
}

func (v *Verifier) checkedInputs(publicInputs []string) ([]fr.Element, bool) {
	elements, err := parsePublicInputs(publicInputs)
	if err != nil {
		v.log.Debugf("public inputs rejected: %v", err)
		return nil, false
	}
	if len(elements) != v.layout.PublicInputCount() {
		v.log.Debugf("public input count %d does not match layout %s (%d)",
			len(elements), v.layout, v.layout.PublicInputCount())
		return nil, false
	}
	return elements, true
}

func (v *Verifier) claimMatches(elements []fr.Element, claim domain.BindingClaim) bool {
	if !matchPackedString(elements, v.layout.AccountIDOffset(), claim.AccountID) {
		return false
	}
	if !matchPackedString(elements, v.layout.PublicKeyOffset(), claim.NewPublicKey) {
		return false
	}
	if !matchPackedString(elements, v.layout.TimestampOffset(), claim.Timestamp) {
		return false
	}

	if v.layout == LayoutHashedSender {
		digest, err := header.SenderBindingHash([]byte(claim.FromEmail), []byte(claim.AccountID))
		if err != nil {
			return false
		}
		return matchDigest(elements, v.layout.SenderOffset(), digest)
	}
	return matchPackedString(elements, v.layout.SenderOffset(), claim.FromEmail)
}

func matchPackedString(elements []fr.Element, offset int, value string) bool {
	packed, err := header.PackString(value)
	if err != nil {
		return false
	}
	for i := range packed {
		if !elements[offset+i].Equal(&packed[i]) {
			return false
		}
	}
	return true
}

// matchDigest compares the 32 one-byte-per-element digest slots.
func matchDigest(elements []fr.Element, offset int, digest [32]byte) bool {
	var want fr.Element
	for i, b := range digest {
		want.SetUint64(uint64(b))
		if !elements[offset+i].Equal(&want) {
			return false
		}
	}
	return true
}

// decodeResult unpacks the identity fields out of a verified input vector.
// The packed slots came out of a valid proof, but a hostile prover controls
// their contents, so decoding failures still flip the result to invalid.
func (v *Verifier) decodeResult(elements []fr.Element) domain.VerificationResult {
	accountID, err := header.UnpackTrimmed(elements[v.layout.AccountIDOffset() : v.layout.AccountIDOffset()+header.PackedSubstringFieldLen])
	if err != nil {
		v.log.Debugf("account id slot rejected: %v", err)
		return domain.VerificationResult{}
	}
	newPublicKey, err := header.UnpackTrimmed(elements[v.layout.PublicKeyOffset() : v.layout.PublicKeyOffset()+header.PackedSubstringFieldLen])
	if err != nil {
		v.log.Debugf("public key slot rejected: %v", err)
		return domain.VerificationResult{}
	}
	timestampBytes, err := header.UnpackTrimmed(elements[v.layout.TimestampOffset() : v.layout.TimestampOffset()+header.PackedSubstringFieldLen])
	if err != nil {
		v.log.Debugf("timestamp slot rejected: %v", err)
		return domain.VerificationResult{}
	}

	result := domain.VerificationResult{
		Verified:         true,
		AccountID:        string(accountID),
		NewPublicKey:     string(newPublicKey),
		EmailTimestampMs: ParseEmailTimestampMs(string(timestampBytes)),
	}
	if v.layout == LayoutPlaintextSender {
		fromAddress, err := header.UnpackTrimmed(elements[v.layout.SenderOffset() : v.layout.SenderOffset()+header.PackedSubstringFieldLen])
		if err != nil {
			v.log.Debugf("from address slot rejected: %v", err)
			return domain.VerificationResult{}
		}
		result.FromAddress = string(fromAddress)
	}
	return result
}
