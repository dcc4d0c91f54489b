package incoming

import (
	"github.com/web3-authn/zk-email-verifier/src/proofs"
	"github.com/web3-authn/zk-email-verifier/src/types/domain"
)

// VerificationRequestDto is the queue message asking for one recovery proof
// to be checked. Claim is optional; when present the proof's public outputs
// must bind to it.
type VerificationRequestDto struct {
	RequestID    string               `json:"request_id"`
	Proof        proofs.ProofInput    `json:"proof"`
	PublicInputs []string             `json:"public_inputs"`
	Claim        *domain.BindingClaim `json:"claim,omitempty"`
}
