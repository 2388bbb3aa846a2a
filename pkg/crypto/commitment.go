package crypto

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	tw "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
)

// CommitmentKey fixes the two independent generators G, H of the
// Pedersen-style commitment Commit(msg, ρ) = [msg]G + [ρ]H over the
// BN254-embedded twisted-Edwards curve (spec §4.1). G is the curve's
// standard base point; H is derived by hashing a domain string to a curve
// point (try-and-increment), which keeps its discrete log with respect to G
// unknown to everyone — the property Pedersen binding actually depends on.
// A CommitmentKey is a circuit constant, fixed once at setup and shared
// read-only across every session (spec §5).
type CommitmentKey struct {
	G tw.PointAffine
	H tw.PointAffine
}

// NewCommitmentKey builds the canonical VLDP commitment key. label lets
// different protocol variants (Base/Expand/Shuffle) derive distinct,
// non-interchangeable H points from the same base curve; cmd/setup passes
// a per-variant label ("vldp-" followed by the variant name), and the
// protocol packages take an already-built key rather than a label.
func NewCommitmentKey(label string) (CommitmentKey, error) {
	params := tw.GetEdwardsCurve()
	h, err := hashToCurve(label)
	if err != nil {
		return CommitmentKey{}, fmt.Errorf("crypto: derive commitment generator: %w", err)
	}
	return CommitmentKey{G: params.Base, H: h}, nil
}

// Commit computes C = [msg]G + [rho]H natively. msg and rho are taken mod
// the inner curve's scalar order by the underlying scalar multiplication.
func (k CommitmentKey) Commit(msg, rho *big.Int) tw.PointAffine {
	var msgG, rhoH, c tw.PointAffine
	msgG.ScalarMultiplication(&k.G, msg)
	rhoH.ScalarMultiplication(&k.H, rho)
	c.Add(&msgG, &rhoH)
	return c
}

// Open verifies that commitment opens to (msg, rho) under k.
func (k CommitmentKey) Open(commitment tw.PointAffine, msg, rho *big.Int) bool {
	expected := k.Commit(msg, rho)
	return expected.X.Equal(&commitment.X) && expected.Y.Equal(&commitment.Y)
}

// Encode reduces a commitment point to the single field element used as a
// Merkle leaf or circuit public input: its X coordinate. Two points with
// equal X but differing Y would require finding the curve's second root,
// which is itself a discrete-log-hard problem here, so this is safe as a
// compact per-leaf fingerprint.
func Encode(p tw.PointAffine) *big.Int {
	var x big.Int
	p.X.BigInt(&x)
	return &x
}

// hashToCurve derives a curve point from label via try-and-increment: hash
// (label, counter) to a candidate X coordinate with Poseidon2, solve the
// twisted-Edwards equation a·x²+y² = 1+d·x²·y² for y, and accept the first
// candidate that lands on the curve. The result is then cleared of
// cofactor so it lies in the prime-order subgroup the circuit gadgets
// operate over.
func hashToCurve(label string) (tw.PointAffine, error) {
	params := tw.GetEdwardsCurve()

	labelElem := new(big.Int).SetBytes([]byte(label))

	var one fr.Element
	one.SetOne()

	for counter := int64(0); counter < 1<<16; counter++ {
		candidateX := HashElements(DomainCommitment, labelElem, big.NewInt(counter))

		var x, xSq, num, den, y fr.Element
		x.SetBigInt(candidateX)
		xSq.Square(&x)

		// num = 1 - a*x^2
		num.Mul(&params.A, &xSq)
		num.Neg(&num)
		num.Add(&num, &one)

		// den = 1 - d*x^2
		den.Mul(&params.D, &xSq)
		den.Neg(&den)
		den.Add(&den, &one)

		if den.IsZero() {
			continue
		}
		var denInv fr.Element
		denInv.Inverse(&den)

		var ySq fr.Element
		ySq.Mul(&num, &denInv)

		if y.Sqrt(&ySq) == nil {
			continue
		}

		var candidate tw.PointAffine
		candidate.X.Set(&x)
		candidate.Y.Set(&y)

		var cleared tw.PointAffine
		cofactor := new(big.Int).SetUint64(params.Cofactor.Uint64())
		cleared.ScalarMultiplication(&candidate, cofactor)
		if cleared.X.IsZero() && cleared.Y.IsZero() {
			continue
		}
		return cleared, nil
	}
	return tw.PointAffine{}, fmt.Errorf("crypto: hash-to-curve exhausted counter space for label %q", label)
}
