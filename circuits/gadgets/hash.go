// Package gadgets holds the in-circuit counterpart of each pkg/crypto
// native primitive: hash, Merkle path, Pedersen commitment, EdDSA
// signature, and PRF derive. Every gadget here must recompute bit-for-bit
// whatever its pkg/crypto sibling computes natively, since a session's
// witness is built natively and then checked inside the circuit (the
// teacher's own PoI circuit and its VRF-style commitment rely on exactly
// this property).
package gadgets

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// domain tags mirror pkg/crypto's HashElements domain separation.
const (
	domainCommitment     = 1
	domainMerkleLeaf     = 2
	domainDerivePRF      = 3
	domainEddsaChallenge = 4
)

// newHasher builds a fresh Poseidon2 Merkle-Damgard hasher with the
// permutation parameters the teacher's PoI circuit uses (t=2, 6 full
// rounds, 50 partial rounds for the BN254 scalar field).
func newHasher(api frontend.API) (hash.FieldHasher, error) {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return nil, err
	}
	return hash.NewMerkleDamgardHasher(api, p, 0), nil
}

// HashElements is the in-circuit twin of crypto.HashElements: it hashes a
// domain tag followed by a sequence of field elements.
func HashElements(api frontend.API, domainTag int, elems ...frontend.Variable) (frontend.Variable, error) {
	h, err := newHasher(api)
	if err != nil {
		return nil, err
	}
	h.Write(frontend.Variable(domainTag))
	h.Write(elems...)
	return h.Sum(), nil
}

// HashNodes is the in-circuit twin of crypto.HashNodes, the Merkle
// two-to-one compression function.
func HashNodes(api frontend.API, left, right frontend.Variable) (frontend.Variable, error) {
	return HashElements(api, domainMerkleLeaf, left, right)
}
