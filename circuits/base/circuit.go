// Package base implements the Base protocol's relation (spec §4.3): a
// single Pedersen-committed randomness value, combined with a server seed
// via Derive, driving the LDP output.
package base

import (
	"math/big"

	"github.com/PlasmaXD/VLDP/circuits/common"
	"github.com/PlasmaXD/VLDP/circuits/gadgets"
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/consensys/gnark/frontend"
	twistededwards "github.com/consensys/gnark/std/algebra/native/twistededwards"
)

// Circuit is compiled once per (K, IsRealInput) parameter tuple (spec §3).
//
// ServerSigPKX/Y and GX/GY/HX/HY are circuit constants baked in at
// construction, not witness inputs — spec §4.2 constraint 3 requires
// server_sig_pk to be "a circuit constant fixed at setup", and the
// commitment generators are likewise fixed per deployment.
type Circuit struct {
	Params common.Params

	ServerSigPKX, ServerSigPKY *big.Int
	GX, GY, HX, HY             *big.Int

	// Public witnesses
	ClientSigPK gadgets.PublicKey `gnark:",public"`
	CommitmentX frontend.Variable `gnark:",public"`
	CommitmentY frontend.Variable `gnark:",public"`
	ServerSeed  frontend.Variable `gnark:",public"`
	ServerSig   gadgets.Signature `gnark:",public"`
	Time        frontend.Variable `gnark:",public"`
	Gamma       frontend.Variable `gnark:",public"`
	Y           frontend.Variable `gnark:",public"`

	// Private witnesses
	X         frontend.Variable
	Rc        frontend.Variable
	Rho       frontend.Variable
	ClientSig gadgets.Signature
}

// Define enforces the Base relation: commitment opening (1), randomness
// derivation (2), the two signature checks (3,4), and LDP correctness (5).
func (c *Circuit) Define(api frontend.API) error {
	ck, err := gadgets.NewCommitmentKey(api, c.GX, c.GY, c.HX, c.HY)
	if err != nil {
		return err
	}

	// Constraint 1: Commit(r_c, rho) == C.
	ck.AssertOpens(twistededwards.Point{X: c.CommitmentX, Y: c.CommitmentY}, c.Rc, c.Rho)

	// Constraint 2: r = derive(s, r_c).
	r, err := gadgets.Derive(api, c.ServerSeed, c.Rc)
	if err != nil {
		return err
	}

	serverSigPK := gadgets.PublicKey{A: twistededwards.Point{X: c.ServerSigPKX, Y: c.ServerSigPKY}}

	serverMsg, err := gadgets.HashElements(api, 4, /* DomainEddsaChallenge */
		c.CommitmentX, c.CommitmentY, c.ClientSigPK.A.X, c.ClientSigPK.A.Y, c.Time, c.ServerSeed)
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
// proof binding them has been produced (protocol.Zeroizer, spec §5); the
// circuit's constants and signatures are untouched.
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
