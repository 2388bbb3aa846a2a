// Package expand implements the Expand protocol's relation (spec §4.4): a
// Pedersen commitment opening whose leaf fingerprint must also sit at a
// prover-chosen position under a public batch Merkle root, on top of the
// same randomness-derived LDP relation Base uses.
package expand

import (
	"math/big"

	"github.com/PlasmaXD/VLDP/circuits/common"
	"github.com/PlasmaXD/VLDP/circuits/gadgets"
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/consensys/gnark/frontend"
	twistededwards "github.com/consensys/gnark/std/algebra/native/twistededwards"
)

// Circuit is compiled once per (K, IsRealInput, MerkleDepth) tuple.
// Depth is a plain int, not a witness field: it fixes how many of
// Path.Siblings/Bits the gadget walks, matching the batch size n = 2^Depth
// a deployment commits to at setup, the same way Base fixes its commitment
// generators.
type Circuit struct {
	Params common.Params
	Depth  int

	ServerSigPKX, ServerSigPKY *big.Int
	GX, GY, HX, HY             *big.Int

	// Public witnesses
	ClientSigPK gadgets.PublicKey  `gnark:",public"`
	CRoot       frontend.Variable  `gnark:",public"`
	ServerSeed  frontend.Variable  `gnark:",public"`
	ServerSig   gadgets.Signature  `gnark:",public"`
	Time        frontend.Variable  `gnark:",public"`
	Gamma       frontend.Variable  `gnark:",public"`
	Y           frontend.Variable  `gnark:",public"`

	// Private witnesses
	X         frontend.Variable
	Rc        frontend.Variable
	Rho       frontend.Variable
	Path      gadgets.MerklePath
	ClientSig gadgets.Signature
}

// Define enforces: commitment opening plus Merkle membership under CRoot
// (constraint 1), derives r via gadgets.Derive (constraint 2), then
// delegates both signature checks and LDP correctness (constraints 3-6)
// to common.Verify, exactly as Base does.
func (c *Circuit) Define(api frontend.API) error {
	ck, err := gadgets.NewCommitmentKey(api, c.GX, c.GY, c.HX, c.HY)
	if err != nil {
		return err
	}

	commitment := ck.Commit(c.Rc, c.Rho)
	leaf := gadgets.Encode(commitment)
	if err := gadgets.VerifyPath(api, leaf, c.Path, c.Depth, c.CRoot); err != nil {
		return err
	}

	r, err := gadgets.Derive(api, c.ServerSeed, c.Rc)
	if err != nil {
		return err
	}

	serverSigPK := gadgets.PublicKey{A: twistededwards.Point{X: c.ServerSigPKX, Y: c.ServerSigPKY}}

	serverMsg, err := gadgets.HashElements(api, 4, /* DomainEddsaChallenge */
		c.CRoot, c.ClientSigPK.A.X, c.ClientSigPK.A.Y, c.Time, c.ServerSeed)
	if err != nil {
		return err
	}
	clientMsg, err := gadgets.HashElements(api, 4, c.X, c.Time)
	if err != nil {
		return err
	}

	w := common.Witness{
		ClientSigPK: c.ClientSigPK,
		ServerSigPK: serverSigPK,
		ServerSig:   c.ServerSig,
		ClientSig:   c.ClientSig,
		Time:        c.Time,
		Gamma:       c.Gamma,
		Y:           c.Y,
		X:           c.X,
		R:           r,
	}
	return common.Verify(api, w, common.Messages{ServerSigMsg: serverMsg, ClientSigMsg: clientMsg}, c.Params)
}

// ZeroizeSecrets clears the per-session secrets (x, r_c, rho) once the
// proof binding them has been produced (protocol.Zeroizer, spec §5). The
// Merkle path is left alone: it identifies a batch position rather than a
// session secret, and the server never receives it off the wire anyway
// (see protocol/expand/bind.go's PublicAssignment).
func (c *Circuit) ZeroizeSecrets() {
	zeroizeVar(c.X)
	zeroizeVar(c.Rc)
	zeroizeVar(c.Rho)
}

func zeroizeVar(v frontend.Variable) {
	if b, ok := v.(*big.Int); ok {
		crypto.Zeroize(b)
	}
}
