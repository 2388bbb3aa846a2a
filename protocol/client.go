package protocol

import (
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/PlasmaXD/VLDP/vldperr"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog"
)

// Client is the generic client-side session engine of spec §4.6, shared
// across Base/Expand/Shuffle. Building the actual circuit assignment from
// SessionInputs is protocol-specific (circuits/{base,expand,shuffle}); the
// Client only drives the state machine and the two operations every
// variant needs regardless of relation: checking the server's native
// signature and running the prover.
type Client struct {
	Variant    Variant
	SigningKey eddsa.PrivateKey
	ServerKey  eddsa.PublicKey
	State      ClientState
	Log        zerolog.Logger
}

// NewClient constructs a Client in the Fresh state.
func NewClient(v Variant, signingKey eddsa.PrivateKey, serverKey eddsa.PublicKey, log zerolog.Logger) *Client {
	return &Client{
		Variant:    v,
		SigningKey: signingKey,
		ServerKey:  serverKey,
		State:      ClientFresh,
		Log:        log.With().Str("variant", v.Name).Logger(),
	}
}

// AwaitSeed transitions Fresh -> AwaitingSeed after a Phase1Request has
// been sent.
func (c *Client) AwaitSeed() {
	c.State = ClientAwaitingSeed
}

// AcceptSeed checks the server's signature over serverMsg natively (spec
// §4.3 Phase 2's first client-side step, done before any proving work is
// spent) and transitions AwaitingSeed -> Ready on success, or -> Aborted
// on failure. A forged or mismatched server_sig must never reach the
// prover: every relation's constraint on server_sig re-verifies it
// in-circuit too, but failing fast here avoids wasted proving time.
func (c *Client) AcceptSeed(serverMsg, serverSig []byte) error {
	ok, err := crypto.Verify(c.ServerKey, serverMsg, serverSig)
	if err != nil {
		c.State = ClientAborted
		return vldperr.New(vldperr.PrimitiveFailure, err)
	}
	if !ok {
		c.State = ClientAborted
		return vldperr.New(vldperr.SignatureInvalid, nil)
	}
	c.State = ClientReady
	return nil
}

// Prove builds the Groth16 witness from assignment and runs the prover,
// transitioning Ready -> Emitted. assignment must already carry every
// field PrepareWitness filled in (circuits/base, circuits/expand,
// circuits/shuffle each expose their own PrepareWitness). If assignment
// implements Zeroizer, its per-session secrets are cleared once the
// witness has been derived from it, win or lose.
func (c *Client) Prove(assignment frontend.Circuit) (groth16.Proof, error) {
	if z, ok := assignment.(Zeroizer); ok {
		defer z.ZeroizeSecrets()
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		c.State = ClientAborted
		return nil, vldperr.New(vldperr.PrimitiveFailure, err)
	}
	proof, err := groth16.Prove(c.Variant.ConstraintSystem, c.Variant.ProvingKey, w)
	if err != nil {
		c.State = ClientAborted
		return nil, vldperr.New(vldperr.PrimitiveFailure, err)
	}
	c.State = ClientEmitted
	return proof, nil
}

// Abort transitions to Aborted from any state, per spec §4.6's "any state
// may transition to Aborted on local failure or explicit cancellation".
func (c *Client) Abort() {
	c.State = ClientAborted
}
