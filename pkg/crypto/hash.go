// Package crypto implements the native half of the VLDP primitive layer:
// commitment, signature, PRF/derive, and hash, each paired with an
// in-circuit gadget under circuits/gadgets that must agree bit-for-bit.
// The pairing is built on gnark-crypto's Poseidon2, the one hash in this
// dependency stack with a verified-matching gnark std gadget (the teacher's
// own VRF-style commitment relies on exactly this property).
package crypto

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// Domain tags separate hash uses so that, e.g., a commitment opening can
// never collide with a Merkle leaf hash even given identical field inputs.
const (
	DomainCommitment    = 1
	DomainMerkleLeaf    = 2
	DomainDerivePRF     = 3
	DomainEddsaChallenge = 4
)

// HashElements hashes a domain tag followed by a sequence of field elements
// with Poseidon2, returning the digest as a big.Int. This is the one native
// hash primitive shared by commitment opening, randomness derivation, and
// Merkle node compression.
func HashElements(domainTag int64, elems ...*big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()

	var tagFr fr.Element
	tagFr.SetInt64(domainTag)
	tagBytes := tagFr.Bytes()
	h.Write(tagBytes[:])

	for _, e := range elems {
		var fe fr.Element
		fe.SetBigInt(e)
		b := fe.Bytes()
		h.Write(b[:])
	}

	return new(big.Int).SetBytes(h.Sum(nil))
}

// HashNodes is the two-to-one Merkle compression function H₂, used by
// pkg/merkle to build the Expand batch tree.
func HashNodes(left, right *big.Int) *big.Int {
	return HashElements(DomainMerkleLeaf, left, right)
}
