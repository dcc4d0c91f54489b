package proofs

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
)

// Verifying-key artifact container. The key-generation pipeline emits a small
// binary envelope around the gnark-serialized key so that a deployment can
// detect corruption and layout mismatches structurally, before any
// cryptographic use.
const (
	artifactMagic        = "RVVK"
	artifactVersion      = 1
	artifactSectionCount = 10

	sectionCurveID      = 1
	sectionScheme       = 2
	sectionLayout       = 3
	sectionPublicCount  = 4
	sectionDigest       = 5
	sectionVerifyingKey = 6
	sectionCreatedAt    = 7
	sectionToolchain    = 8
	sectionLabel        = 9
	sectionChecksum     = 10
)

const schemeGroth16 = "groth16"

// ErrInvalidArtifact wraps every structural rejection so callers can match
// the class while logs keep the specific reason.
var ErrInvalidArtifact = errors.New("invalid verifying-key artifact")

// VerifyingKeyArtifact is the decoded envelope: the reconstructed key plus
// the metadata the verifier needs to interpret public inputs.
type VerifyingKeyArtifact struct {
	Key           groth16.VerifyingKey
	Layout        Layout
	CircuitDigest [32]byte
	CreatedAt     uint64
	Toolchain     string
	Label         string
}

// LoadVerifyingKeyArtifact reads and validates an artifact. Every check is
// structural and happens before the gnark key is deserialized; the checksum
// section covers the payloads of sections 1 through 9 in type order.
func LoadVerifyingKeyArtifact(r io.Reader) (*VerifyingKeyArtifact, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrInvalidArtifact, err)
	}
	if len(raw) < 12 {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidArtifact)
	}
	if string(raw[:4]) != artifactMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidArtifact, raw[:4])
	}
	if v := binary.BigEndian.Uint32(raw[4:8]); v != artifactVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidArtifact, v)
	}
	if n := binary.BigEndian.Uint32(raw[8:12]); n != artifactSectionCount {
		return nil, fmt.Errorf("%w: section count %d, want %d", ErrInvalidArtifact, n, artifactSectionCount)
	}

	sections := make(map[uint32][]byte, artifactSectionCount)
	off := 12
	for i := 0; i < artifactSectionCount; i++ {
		if len(raw)-off < 12 {
			return nil, fmt.Errorf("%w: truncated section header at offset %d", ErrInvalidArtifact, off)
		}
		typ := binary.BigEndian.Uint32(raw[off : off+4])
		size := binary.BigEndian.Uint64(raw[off+4 : off+12])
		off += 12
		if typ < sectionCurveID || typ > sectionChecksum {
			return nil, fmt.Errorf("%w: unknown section type %d", ErrInvalidArtifact, typ)
		}
		if _, dup := sections[typ]; dup {
			return nil, fmt.Errorf("%w: duplicate section type %d", ErrInvalidArtifact, typ)
		}
		if size > uint64(len(raw)-off) {
			return nil, fmt.Errorf("%w: section %d overruns artifact", ErrInvalidArtifact, typ)
		}
		sections[typ] = raw[off : off+int(size)]
		off += int(size)
	}
	if off != len(raw) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidArtifact, len(raw)-off)
	}

	h := sha256.New()
	for typ := uint32(sectionCurveID); typ <= sectionLabel; typ++ {
		h.Write(sections[typ])
	}
	if !bytes.Equal(h.Sum(nil), sections[sectionChecksum]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidArtifact)
	}

	if len(sections[sectionCurveID]) != 4 {
		return nil, fmt.Errorf("%w: malformed curve-id section", ErrInvalidArtifact)
	}
	if id := ecc.ID(binary.BigEndian.Uint32(sections[sectionCurveID])); id != ecc.BN254 {
		return nil, fmt.Errorf("%w: curve %s, want %s", ErrInvalidArtifact, id, ecc.BN254)
	}
	if scheme := string(sections[sectionScheme]); scheme != schemeGroth16 {
		return nil, fmt.Errorf("%w: proving scheme %q, want %q", ErrInvalidArtifact, scheme, schemeGroth16)
	}
	if len(sections[sectionLayout]) != 4 {
		return nil, fmt.Errorf("%w: malformed layout section", ErrInvalidArtifact)
	}
	layout := Layout(binary.BigEndian.Uint32(sections[sectionLayout]))
	if !layout.Valid() {
		return nil, fmt.Errorf("%w: unknown layout %d", ErrInvalidArtifact, uint32(layout))
	}
	if len(sections[sectionPublicCount]) != 4 {
		return nil, fmt.Errorf("%w: malformed public-count section", ErrInvalidArtifact)
	}
	if n := int(binary.BigEndian.Uint32(sections[sectionPublicCount])); n != layout.PublicInputCount() {
		return nil, fmt.Errorf("%w: public-input count %d does not match layout %s (%d)",
			ErrInvalidArtifact, n, layout, layout.PublicInputCount())
	}
	if len(sections[sectionDigest]) != sha256.Size {
		return nil, fmt.Errorf("%w: malformed circuit-digest section", ErrInvalidArtifact)
	}
	if len(sections[sectionCreatedAt]) != 8 {
		return nil, fmt.Errorf("%w: malformed created-at section", ErrInvalidArtifact)
	}

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(sections[sectionVerifyingKey])); err != nil {
		return nil, fmt.Errorf("%w: verifying key: %v", ErrInvalidArtifact, err)
	}

	artifact := &VerifyingKeyArtifact{
		Key:       vk,
		Layout:    layout,
		CreatedAt: binary.BigEndian.Uint64(sections[sectionCreatedAt]),
		Toolchain: string(sections[sectionToolchain]),
		Label:     string(sections[sectionLabel]),
	}
	copy(artifact.CircuitDigest[:], sections[sectionDigest])
	return artifact, nil
}

// EncodeVerifyingKeyArtifact is the writer half used by the key-generation
// tooling and the artifact tests. Sections are emitted in type order.
func EncodeVerifyingKeyArtifact(w io.Writer, a *VerifyingKeyArtifact) error {
	var keyBuf bytes.Buffer
	if _, err := a.Key.WriteTo(&keyBuf); err != nil {
		return fmt.Errorf("serialize verifying key: %w", err)
	}

	payloads := make([][]byte, sectionChecksum+1)
	payloads[sectionCurveID] = binary.BigEndian.AppendUint32(nil, uint32(ecc.BN254))
	payloads[sectionScheme] = []byte(schemeGroth16)
	payloads[sectionLayout] = binary.BigEndian.AppendUint32(nil, uint32(a.Layout))
	payloads[sectionPublicCount] = binary.BigEndian.AppendUint32(nil, uint32(a.Layout.PublicInputCount()))
	payloads[sectionDigest] = a.CircuitDigest[:]
	payloads[sectionVerifyingKey] = keyBuf.Bytes()
	payloads[sectionCreatedAt] = binary.BigEndian.AppendUint64(nil, a.CreatedAt)
	payloads[sectionToolchain] = []byte(a.Toolchain)
	payloads[sectionLabel] = []byte(a.Label)

	h := sha256.New()
	for typ := sectionCurveID; typ <= sectionLabel; typ++ {
		h.Write(payloads[typ])
	}
	payloads[sectionChecksum] = h.Sum(nil)

	var out bytes.Buffer
	out.WriteString(artifactMagic)
	binary.Write(&out, binary.BigEndian, uint32(artifactVersion))
	binary.Write(&out, binary.BigEndian, uint32(artifactSectionCount))
	for typ := sectionCurveID; typ <= sectionChecksum; typ++ {
		binary.Write(&out, binary.BigEndian, uint32(typ))
		binary.Write(&out, binary.BigEndian, uint64(len(payloads[typ])))
		out.Write(payloads[typ])
	}
	_, err := w.Write(out.Bytes())
	return err
}
