package protocol

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/PlasmaXD/VLDP/pkg/field"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/fxamacker/cbor/v2"
)

// Phase1Request is the client->server message of spec §6: "{
// commitment_or_root: G, client_sig_pk: G, time: bytes[b_t] }".
// CommitmentOrRoot is 64 bytes (X||Y, Base/Shuffle) or 32 bytes (a Merkle
// root field element, Expand) — each protocol's bind.go knows which.
type Phase1Request struct {
	CommitmentOrRoot []byte `cbor:"1,keyasint"`
	ClientSigPK      []byte `cbor:"2,keyasint"`
	Time             []byte `cbor:"3,keyasint"`
}

// Phase1Response is the server->client message: "{ server_seed:
// bytes[|seed|], server_sig: Schnorr = (R: G, s: F) }". ServerSig is the
// raw signature bytes crypto.Sign produces, opaque on the wire.
type Phase1Response struct {
	ServerSeed []byte `cbor:"1,keyasint"`
	ServerSig  []byte `cbor:"2,keyasint"`
}

// Phase2Request is the client->server message: "{ client_sig_pk,
// commitment_or_root, server_seed, server_sig, time, y: uint64, proof: π,
// [merkle_path, leaf_index (Expand only)] }".
type Phase2Request struct {
	ClientSigPK      []byte   `cbor:"1,keyasint"`
	CommitmentOrRoot []byte   `cbor:"2,keyasint"`
	ServerSeed       []byte   `cbor:"3,keyasint"`
	ServerSig        []byte   `cbor:"4,keyasint"`
	Time             []byte   `cbor:"5,keyasint"`
	Y                uint64   `cbor:"6,keyasint"`
	Proof            []byte   `cbor:"7,keyasint"`
	MerklePath       [][]byte `cbor:"8,keyasint,omitempty"`
	LeafIndex        *uint32  `cbor:"9,keyasint,omitempty"`
}

// Marshal CBOR-encodes m. Used for both wire transmission and as the input
// to Fingerprint.
func Marshal(m any) ([]byte, error) {
	b, err := cbor.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal message: %w", err)
	}
	return b, nil
}

// Unmarshal CBOR-decodes data into out, a pointer to one of the message
// structs above.
func Unmarshal(data []byte, out any) error {
	if err := cbor.Unmarshal(data, out); err != nil {
		return fmt.Errorf("protocol: unmarshal message: %w", err)
	}
	return nil
}

// Fingerprint computes a transport-layer integrity check over m's
// canonical CBOR encoding: BLAKE2s-256, native-only, never re-derived
// in-circuit (see pkg/crypto/fingerprint.go and DESIGN.md's Open Question
// resolution). This detects bit flips introduced between serialization and
// delivery; it is not a substitute for the EdDSA signatures or the proof,
// both of which bind the message's actual protocol meaning.
func Fingerprint(m any) ([32]byte, error) {
	b, err := Marshal(m)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Fingerprint(b), nil
}

// EncodePoint renders a curve point's two coordinates as 64 bytes,
// big-endian, X then Y — the wire encoding for a Pedersen commitment.
func EncodePoint(x, y *big.Int) []byte {
	out := make([]byte, 64)
	copy(out[:32], field.ElementToBytes(x, 32))
	copy(out[32:], field.ElementToBytes(y, 32))
	return out
}

// DecodePoint inverts EncodePoint.
func DecodePoint(data []byte) (x, y *big.Int, err error) {
	if len(data) != 64 {
		return nil, nil, fmt.Errorf("protocol: point encoding must be 64 bytes, got %d", len(data))
	}
	return field.BytesToElement(data[:32]), field.BytesToElement(data[32:]), nil
}

// EncodeElement renders a single field element (an Expand batch root) as
// 32 bytes, big-endian.
func EncodeElement(v *big.Int) []byte {
	return field.ElementToBytes(v, 32)
}

// DecodeElement inverts EncodeElement.
func DecodeElement(data []byte) *big.Int {
	return field.BytesToElement(data)
}

// EncodeTime renders t as a fixed-width byte string per config's
// TimeBytes, matching spec §6's "time: bytes[b_t]".
func EncodeTime(t *big.Int, timeBytes int) []byte {
	return field.ElementToBytes(t, timeBytes)
}

// DecodeTime inverts EncodeTime.
func DecodeTime(data []byte) *big.Int {
	return field.BytesToElement(data)
}

// EncodeProof serializes a Groth16 proof with its own WriteTo method, the
// same io.WriterTo convention pkg/setup uses for keys.
func EncodeProof(proof groth16.Proof) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("protocol: encode proof: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeProof inverts EncodeProof into a freshly allocated proof of
// Groth16's BN254 backend.
func DecodeProof(data []byte) (groth16.Proof, error) {
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("protocol: decode proof: %w", err)
	}
	return proof, nil
}
