package gadgets

import (
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	twistededwards "github.com/consensys/gnark/std/algebra/native/twistededwards"
)

// CommitmentKey mirrors crypto.CommitmentKey's two generators as in-circuit
// constants (frontend.Variable values holding the fixed G/H coordinates,
// which each circuit passes in from plain *big.Int fields, so they are
// baked in at compile time rather than assigned as witnesses).
type CommitmentKey struct {
	Curve twistededwards.Curve
	G     twistededwards.Point
	H     twistededwards.Point
}

// NewCommitmentKey wires up the in-circuit twisted-Edwards curve used by
// both the commitment and signature gadgets. G/H must be assigned by the
// caller from crypto.CommitmentKey's native coordinates.
func NewCommitmentKey(api frontend.API, gX, gY, hX, hY frontend.Variable) (CommitmentKey, error) {
	curve, err := twistededwards.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return CommitmentKey{}, err
	}
	return CommitmentKey{
		Curve: curve,
		G:     twistededwards.Point{X: gX, Y: gY},
		H:     twistededwards.Point{X: hX, Y: hY},
	}, nil
}

// Commit computes [msg]G + [rho]H in-circuit, the bit-exact counterpart of
// crypto.CommitmentKey.Commit.
func (k CommitmentKey) Commit(msg, rho frontend.Variable) twistededwards.Point {
	msgG := k.Curve.ScalarMul(k.G, msg)
	rhoH := k.Curve.ScalarMul(k.H, rho)
	return k.Curve.Add(msgG, rhoH)
}

// AssertOpens constrains that commit equals Commit(msg, rho) under k,
// comparing both coordinates (not just Encode's X-only fingerprint) since
// the circuit has the full point structure available cheaply.
func (k CommitmentKey) AssertOpens(commit twistededwards.Point, msg, rho frontend.Variable) {
	c := k.Commit(msg, rho)
	k.Curve.API().AssertIsEqual(c.X, commit.X)
	k.Curve.API().AssertIsEqual(c.Y, commit.Y)
}

// Encode returns the X coordinate, matching crypto.Encode's Merkle-leaf /
// public-input fingerprint convention.
func Encode(p twistededwards.Point) frontend.Variable {
	return p.X
}
