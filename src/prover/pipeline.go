// Package prover assembles proof requests: it locates and checks the
// recovery fields in a verified header, packs them into the canonical
// public-input vector, and hands the vector to a proving backend.
package prover

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/web3-authn/zk-email-verifier/pkg/logger"
	"github.com/web3-authn/zk-email-verifier/src/header"
	"github.com/web3-authn/zk-email-verifier/src/proofs"
)

// Prover is the capability boundary around the proving backend. Proof
// generation is heavyweight and runs out of process in most deployments;
// the pipeline only guarantees its inputs are fully computed first.
type Prover interface {
	Prove(verified *header.VerifiedHeader, publicInputs []fr.Element) (proofs.ProofInput, error)
}

// Pipeline drives a raw recovery email from DKIM-verified bytes to a proof
// and its public-input strings.
type Pipeline struct {
	oracle header.VerifiedHeaderOracle
	prover Prover
	layout proofs.Layout
	log    *logger.Logger
}

func NewPipeline(oracle header.VerifiedHeaderOracle, prover Prover, layout proofs.Layout) *Pipeline {
	return &Pipeline{
		oracle: oracle,
		prover: prover,
		layout: layout,
		log:    logger.Default(),
	}
}

// BuildPublicInputs verifies the document with the oracle, locates the
// recovery fields, enforces the anchoring rules, and packs everything into
// the layout's canonical order. Any violation aborts the request; there is
// no partial vector.
func (p *Pipeline) BuildPublicInputs(raw []byte) (*header.VerifiedHeader, []fr.Element, error) {
	verified, err := p.oracle.VerifyDocument(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("verify document: %w", err)
	}

	locs, err := header.Locate(verified.Buffer)
	if err != nil {
		return nil, nil, err
	}
	if err := header.VerifyAnchored(verified.Buffer, locs); err != nil {
		return nil, nil, err
	}

	inputs := make([]fr.Element, p.layout.PublicInputCount())
	if err := p.packInto(inputs, verified.Buffer, locs.RequestID, p.layout.RequestIDOffset()); err != nil {
		return nil, nil, err
	}
	if err := p.packInto(inputs, verified.Buffer, locs.AccountID, p.layout.AccountIDOffset()); err != nil {
		return nil, nil, err
	}
	if err := p.packInto(inputs, verified.Buffer, locs.PublicKey, p.layout.PublicKeyOffset()); err != nil {
		return nil, nil, err
	}
	if err := p.fillSender(inputs, verified.Buffer, locs); err != nil {
		return nil, nil, err
	}
	if err := p.packInto(inputs, verified.Buffer, locs.DateValue, p.layout.TimestampOffset()); err != nil {
		return nil, nil, err
	}
	copy(inputs[p.layout.SignerKeyOffset():], verified.SignerKey[:])
	copy(inputs[p.layout.SignatureOffset():], verified.Signature[:])

	return verified, inputs, nil
}

// GenerateProof runs the full request: public inputs, then the proving
// backend. The inputs come back as decimal strings, the transport form the
// verifier accepts.
func (p *Pipeline) GenerateProof(raw []byte) (proofs.ProofInput, []string, error) {
	verified, inputs, err := p.BuildPublicInputs(raw)
	if err != nil {
		return proofs.ProofInput{}, nil, err
	}

	proof, err := p.prover.Prove(verified, inputs)
	if err != nil {
		return proofs.ProofInput{}, nil, fmt.Errorf("prove: %w", err)
	}

	encoded := make([]string, len(inputs))
	for i := range inputs {
		encoded[i] = inputs[i].String()
	}
	p.log.Debugf("generated proof with %d public inputs", len(encoded))
	return proof, encoded, nil
}

func (p *Pipeline) packInto(inputs []fr.Element, hb *header.HeaderBuffer, loc header.FieldLocation, offset int) error {
	packed, err := header.PackLocation(hb, loc)
	if err != nil {
		return err
	}
	copy(inputs[offset:], packed[:])
	return nil
}

func (p *Pipeline) fillSender(inputs []fr.Element, hb *header.HeaderBuffer, locs header.Locations) error {
	if p.layout == proofs.LayoutHashedSender {
		buf := hb.Bytes()
		from := buf[locs.FromAddress.Start:locs.FromAddress.End()]
		account := buf[locs.AccountID.Start:locs.AccountID.End()]
		digest, err := header.SenderBindingHash(from, account)
		if err != nil {
			return err
		}
		offset := p.layout.SenderOffset()
		for i, b := range digest {
			inputs[offset+i].SetUint64(uint64(b))
		}
		return nil
	}
	return p.packInto(inputs, hb, locs.FromAddress, p.layout.SenderOffset())
}
