package prover

import (
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/web3-authn/zk-email-verifier/src/header"
	"github.com/web3-authn/zk-email-verifier/src/proofs"
)

const pipelineHeader = "x-mailer: test\r\n" +
	"subject:recover-req42 alice.near ed25519:PUBKEY123\r\n" +
	"from:Alice <alice@example.com>\r\n" +
	"date: Mon, 01 Jan 2024 00:00:00 +0000\r\n"

type fixedOracle struct{}

func (fixedOracle) VerifyDocument(raw []byte) (*header.VerifiedHeader, error) {
	hb, err := header.NewHeaderBuffer(raw)
	if err != nil {
		return nil, err
	}
	verified := &header.VerifiedHeader{Buffer: hb}
	for i := 0; i < header.SignerFieldLen; i++ {
		verified.SignerKey[i].SetUint64(uint64(i + 1))
		verified.Signature[i].SetUint64(uint64(100 + i))
	}
	return verified, nil
}

type failingOracle struct{ err error }

func (o failingOracle) VerifyDocument(raw []byte) (*header.VerifiedHeader, error) {
	return nil, o.err
}

type capturingProver struct {
	inputs []fr.Element
}

func (p *capturingProver) Prove(verified *header.VerifiedHeader, publicInputs []fr.Element) (proofs.ProofInput, error) {
	p.inputs = publicInputs
	return proofs.ProofInput{PiA: [3]string{"1", "2", "1"}}, nil
}

func unpackSlot(t *testing.T, inputs []fr.Element, offset int) string {
	t.Helper()
	value, err := header.UnpackTrimmed(inputs[offset : offset+header.PackedSubstringFieldLen])
	if err != nil {
		t.Fatalf("UnpackTrimmed at %d failed: %v", offset, err)
	}
	return string(value)
}

func TestBuildPublicInputsPlaintextLayout(t *testing.T) {
	layout := proofs.LayoutPlaintextSender
	pipeline := NewPipeline(fixedOracle{}, &capturingProver{}, layout)

	verified, inputs, err := pipeline.BuildPublicInputs([]byte(pipelineHeader))
	if err != nil {
		t.Fatalf("BuildPublicInputs failed: %v", err)
	}
	if len(inputs) != layout.PublicInputCount() {
		t.Fatalf("got %d inputs, want %d", len(inputs), layout.PublicInputCount())
	}

	slots := []struct {
		name   string
		offset int
		want   string
	}{
		{"request id", layout.RequestIDOffset(), "req42"},
		{"account id", layout.AccountIDOffset(), "alice.near"},
		{"public key", layout.PublicKeyOffset(), "PUBKEY123"},
		{"from address", layout.SenderOffset(), "alice@example.com"},
		{"timestamp", layout.TimestampOffset(), "Mon, 01 Jan 2024 00:00:00 +0000"},
	}
	for _, s := range slots {
		if got := unpackSlot(t, inputs, s.offset); got != s.want {
			t.Errorf("%s slot: got %q, want %q", s.name, got, s.want)
		}
	}

	for i := 0; i < header.SignerFieldLen; i++ {
		if !inputs[layout.SignerKeyOffset()+i].Equal(&verified.SignerKey[i]) {
			t.Fatalf("signer key element %d not carried over", i)
		}
		if !inputs[layout.SignatureOffset()+i].Equal(&verified.Signature[i]) {
			t.Fatalf("signature element %d not carried over", i)
		}
	}
}

func TestBuildPublicInputsHashedLayout(t *testing.T) {
	layout := proofs.LayoutHashedSender
	pipeline := NewPipeline(fixedOracle{}, &capturingProver{}, layout)

	_, inputs, err := pipeline.BuildPublicInputs([]byte(pipelineHeader))
	if err != nil {
		t.Fatalf("BuildPublicInputs failed: %v", err)
	}
	if len(inputs) != layout.PublicInputCount() {
		t.Fatalf("got %d inputs, want %d", len(inputs), layout.PublicInputCount())
	}

	digest, err := header.SenderBindingHash([]byte("alice@example.com"), []byte("alice.near"))
	if err != nil {
		t.Fatalf("SenderBindingHash failed: %v", err)
	}
	var want fr.Element
	for i, b := range digest {
		want.SetUint64(uint64(b))
		if !inputs[layout.SenderOffset()+i].Equal(&want) {
			t.Fatalf("digest element %d mismatch", i)
		}
	}
}

func TestBuildPublicInputsAbortsOnMalformedHeader(t *testing.T) {
	pipeline := NewPipeline(fixedOracle{}, &capturingProver{}, proofs.LayoutPlaintextSender)

	_, _, err := pipeline.BuildPublicInputs([]byte("from:a <a@b.c>\r\ndate: x\r\n"))
	if !errors.Is(err, header.ErrMalformedHeader) {
		t.Fatalf("got %v, want ErrMalformedHeader", err)
	}
}

func TestBuildPublicInputsPropagatesOracleFailure(t *testing.T) {
	oracleErr := errors.New("signature check failed")
	pipeline := NewPipeline(failingOracle{err: oracleErr}, &capturingProver{}, proofs.LayoutPlaintextSender)

	_, _, err := pipeline.BuildPublicInputs([]byte(pipelineHeader))
	if !errors.Is(err, oracleErr) {
		t.Fatalf("got %v, want oracle error", err)
	}
}

func TestGenerateProofEncodesInputsAsDecimalStrings(t *testing.T) {
	capturing := &capturingProver{}
	pipeline := NewPipeline(fixedOracle{}, capturing, proofs.LayoutPlaintextSender)

	_, publicInputs, err := pipeline.GenerateProof([]byte(pipelineHeader))
	if err != nil {
		t.Fatalf("GenerateProof failed: %v", err)
	}
	if len(publicInputs) != len(capturing.inputs) {
		t.Fatalf("encoded %d inputs, prover saw %d", len(publicInputs), len(capturing.inputs))
	}
	for i, s := range publicInputs {
		if s != capturing.inputs[i].String() {
			t.Fatalf("input %d: %q does not match element %s", i, s, capturing.inputs[i].String())
		}
	}
}
