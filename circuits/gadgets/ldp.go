package gadgets

import (
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
)

func init() {
	solver.RegisterHint(modKHint)
}

// modKHint computes the quotient and remainder of inputs[0] / inputs[1],
// the out-of-circuit half of HistogramOutput's mod-K constraint. gnark
// circuits have no native division; every div/mod relation is built this
// way — compute the witness values with a hint, then assert the
// factorization and range-check the remainder in-circuit.
func modKHint(_ *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	q, rem := new(big.Int).QuoRem(inputs[0], inputs[1], new(big.Int))
	outputs[0].Set(q)
	outputs[1].Set(rem)
	return nil
}

// LDPHistogramParams fixes the compile-time shape of the histogram LDP
// relation: the output domain size K and the bit width, in bytes, of the
// selector field compared against the scaled threshold (see SelectorBit).
type LDPHistogramParams struct {
	K             int
	SelectorBytes int
	GammaBytes    int
}

// SelectorBit derives b_LDP by comparing a dedicated SelectorBytes-wide
// slice of the combined randomness r against gamma scaled up to that
// slice's byte width: threshold = gamma * 2^(8*(SelectorBytes-GammaBytes))
// (spec §3 "a dedicated slice of r"; §4.2 constraint 5). r itself is a full
// ~254-bit Poseidon2 digest, uniform over the whole field — comparing it
// directly against a threshold that only spans SelectorBytes*8 bits would
// make selector >= threshold hold with overwhelming probability for every
// gamma, so the low SelectorBytes*8 bits are split off first via bit
// decomposition, the same technique RealOutput already uses to take r's
// low K bits. With selector properly bounded, gamma=0 makes every selector
// >= 0 (b_LDP always 1). gamma=2^(8*GammaBytes)-1 sets the threshold to
// 2^(8*SelectorBytes) - 2^(8*(SelectorBytes-GammaBytes)), so b_LDP is still
// 1 for the top 2^(8*(SelectorBytes-GammaBytes)) selector values, a
// probability of 2^-(8*GammaBytes) (1/256 at GammaBytes=1): at the maximum
// gamma, b_LDP is almost always 0 but not always.
//
// api.Cmp is used rather than a second bit-decomposition comparator since
// both operands fit in a single field element once selector is bounded,
// and Cmp already returns the {-1,0,1} tri-state gnark's std library
// standardizes on.
func SelectorBit(api frontend.API, r, gamma frontend.Variable, p LDPHistogramParams) frontend.Variable {
	bits := api.ToBinary(r, api.Compiler().FieldBitLen())
	selector := api.FromBinary(bits[:8*p.SelectorBytes]...)

	scale := frontend.Variable(1)
	if shift := 8 * (p.SelectorBytes - p.GammaBytes); shift > 0 {
		shiftVal := int64(1)
		for i := 0; i < shift; i++ {
			shiftVal *= 2
		}
		scale = shiftVal
	}
	threshold := api.Mul(gamma, scale)
	cmp := api.Cmp(selector, threshold)
	// cmp == -1 (selector < threshold) -> b_LDP = 0
	// cmp ==  0 or 1 (selector >= threshold) -> b_LDP = 1
	isLess := api.IsZero(api.Add(cmp, 1))
	return api.Sub(1, isLess)
}

// HistogramOutput implements the is_real_input=false branch of LDP
// correctness (spec §4.2, constraint 5): y = x when b_LDP == 0, else
// y = 1 + (randomBody mod K). Both branches are expressed as one set of
// constraints selected by bLDP, never a conditional AssertIsEqual.
func HistogramOutput(api frontend.API, bLDP, x, randomBody frontend.Variable, k int) frontend.Variable {
	// randomBody mod K: randomBody = q*K + rem, 0 <= rem < K.
	hint, err := api.Compiler().NewHint(modKHint, 2, randomBody, k)
	if err != nil {
		panic(err)
	}
	q, rem := hint[0], hint[1]
	api.AssertIsEqual(api.Add(api.Mul(q, k), rem), randomBody)
	api.AssertIsLessOrEqual(rem, k-1)

	randomized := api.Add(1, rem)
	return api.Select(bLDP, randomized, x)
}

// RealOutput implements the is_real_input=true branch: y is x's already
// fixed-point-encoded value when b_LDP == 0, else the low K bits of the
// combined randomness r, reinterpreted as a K-bit integer. Truncating to K
// bits is done with a bit decomposition rather than a hint, since 2^K is a
// compile-time-known power of two and api.ToBinary/FromBinary already
// constrain every bit, leaving nothing for a hint to certify.
func RealOutput(api frontend.API, bLDP, encodedX, r frontend.Variable, k int) frontend.Variable {
	bits := api.ToBinary(r, api.Compiler().FieldBitLen())
	randomValue := api.FromBinary(bits[:k]...)
	return api.Select(bLDP, randomValue, encodedX)
}
