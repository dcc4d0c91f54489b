package proofs

import (
	"errors"
	"fmt"
	"math/big"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
)

// ProofInput mirrors the snarkjs proof.json shape: three groups of
// decimal-string curve coordinates. The third coordinate of pi_a and pi_c is
// the affine normalization constant and is not load-bearing; only the first
// two coordinate pairs of pi_b are used.
type ProofInput struct {
	PiA [3]string    `json:"pi_a"`
	PiB [3][2]string `json:"pi_b"`
	PiC [3]string    `json:"pi_c"`
}

var errInvalidProofPoint = errors.New("invalid proof point")

func parseFp(s string) (fp.Element, error) {
	var e fp.Element
	if _, err := e.SetString(s); err != nil {
		return e, fmt.Errorf("invalid base-field element %q: %w", s, err)
	}
	return e, nil
}

func parseG1(xs, ys string, name string) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	var err error
	if p.X, err = parseFp(xs); err != nil {
		return p, fmt.Errorf("%s: %w", name, err)
	}
	if p.Y, err = parseFp(ys); err != nil {
		return p, fmt.Errorf("%s: %w", name, err)
	}
	if !p.IsOnCurve() {
		return p, fmt.Errorf("%w: %s not on curve", errInvalidProofPoint, name)
	}
	return p, nil
}

func parseG2(coords [3][2]string, name string) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	var err error
	if p.X.A0, err = parseFp(coords[0][0]); err != nil {
		return p, fmt.Errorf("%s: %w", name, err)
	}
	if p.X.A1, err = parseFp(coords[0][1]); err != nil {
		return p, fmt.Errorf("%s: %w", name, err)
	}
	if p.Y.A0, err = parseFp(coords[1][0]); err != nil {
		return p, fmt.Errorf("%s: %w", name, err)
	}
	if p.Y.A1, err = parseFp(coords[1][1]); err != nil {
		return p, fmt.Errorf("%s: %w", name, err)
	}
	if !p.IsOnCurve() {
		return p, fmt.Errorf("%w: %s not on curve", errInvalidProofPoint, name)
	}
	if !p.IsInSubGroup() {
		return p, fmt.Errorf("%w: %s not in the subgroup", errInvalidProofPoint, name)
	}
	return p, nil
}

// parseProof converts a decimal-encoded proof into the backend's native
// type. The backend assumes well-formed points, so curve and subgroup
// membership are enforced here.
func parseProof(input ProofInput) (*groth16bn254.Proof, error) {
	var proof groth16bn254.Proof
	var err error

	if proof.Ar, err = parseG1(input.PiA[0], input.PiA[1], "pi_a"); err != nil {
		return nil, err
	}
	if proof.Bs, err = parseG2(input.PiB, "pi_b"); err != nil {
		return nil, err
	}
	if proof.Krs, err = parseG1(input.PiC[0], input.PiC[1], "pi_c"); err != nil {
		return nil, err
	}
	return &proof, nil
}

// parsePublicInputs converts the ordered decimal strings into scalar field
// elements. Only canonical encodings pass: a value at or above the scalar
// modulus is rejected rather than silently reduced.
func parsePublicInputs(inputs []string) ([]fr.Element, error) {
	modulus := fr.Modulus()
	elements := make([]fr.Element, len(inputs))
	for i, s := range inputs {
		var value big.Int
		if _, ok := value.SetString(s, 10); !ok {
			return nil, fmt.Errorf("invalid public input %d %q", i, s)
		}
		if value.Sign() < 0 || value.Cmp(modulus) >= 0 {
			return nil, fmt.Errorf("public input %d %q outside the scalar field", i, s)
		}
		elements[i].SetBigInt(&value)
	}
	return elements, nil
}
