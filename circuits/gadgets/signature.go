package gadgets

import (
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	twistededwards "github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
	"github.com/consensys/gnark/std/signature/eddsa"
)

// PublicKey and Signature re-export the gnark std eddsa witness shapes so
// callers don't need a second import of std/signature/eddsa alongside this
// package.
type (
	PublicKey = eddsa.PublicKey
	Signature = eddsa.Signature
)

// VerifySignature checks an EdDSA signature in-circuit, the counterpart of
// crypto.Verify. The challenge hasher is freshly built Poseidon2, matching
// the native side's signatureHash — EdDSA requires the exact same hash on
// both ends to recompute the same challenge scalar.
func VerifySignature(api frontend.API, pub PublicKey, sig Signature, msg frontend.Variable) error {
	curve, err := twistededwards.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return err
	}
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}
	challengeHasher := hash.NewMerkleDamgardHasher(api, p, 0)
	return eddsa.Verify(curve, sig, msg, pub, challengeHasher)
}
