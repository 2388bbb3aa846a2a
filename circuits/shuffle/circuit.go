// Package shuffle implements the Shuffle protocol's relation (spec §4.5):
// identical to Base except the committed value is a seed rather than
// per-session randomness, and the derived randomness comes from
// PRF(s, seed) instead of PRF(s, r_c). The shuffler sitting between
// client and server is an external collaborator (spec.md Non-goals); this
// circuit's relation doesn't change depending on whether a shuffler
// reorders phase-2 messages before they reach Server.VerifyProof.
package shuffle

import (
	"math/big"

	"github.com/PlasmaXD/VLDP/circuits/common"
	"github.com/PlasmaXD/VLDP/circuits/gadgets"
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/consensys/gnark/frontend"
	twistededwards "github.com/consensys/gnark/std/algebra/native/twistededwards"
)

// Circuit is compiled once per (K, IsRealInput) parameter tuple, same as
// Base.
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
	Seed      frontend.Variable
	Rho       frontend.Variable
	ClientSig gadgets.Signature
}

// Define enforces the Shuffle relation: commitment opening over the seed
// (1), seed-keyed randomness derivation (2), the two signature checks
// (3,4), and LDP correctness (5) via the shared common.Verify.
func (c *Circuit) Define(api frontend.API) error {
	ck, err := gadgets.NewCommitmentKey(api, c.GX, c.GY, c.HX, c.HY)
	if err != nil {
		return err
	}

	ck.AssertOpens(twistededwards.Point{X: c.CommitmentX, Y: c.CommitmentY}, c.Seed, c.Rho)

	r, err := gadgets.Derive(api, c.ServerSeed, c.Seed)
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

// ZeroizeSecrets clears the per-session secrets (x, seed, rho) once the
// proof binding them has been produced (protocol.Zeroizer, spec §5).
func (c *Circuit) ZeroizeSecrets() {
	zeroizeVar(c.X)
	zeroizeVar(c.Seed)
	zeroizeVar(c.Rho)
}

func zeroizeVar(v frontend.Variable) {
	if b, ok := v.(*big.Int); ok {
		crypto.Zeroize(b)
	}
}
