// Package base wires circuits/base into the generic protocol.Client/
// protocol.Server engine: building wire messages from a WitnessResult,
// and reconstructing a public-only circuit assignment from a received
// wire message so the server can run groth16 verification without ever
// touching the client's private witness values.
package base

import (
	"fmt"
	"math/big"

	circbase "github.com/PlasmaXD/VLDP/circuits/base"
	"github.com/PlasmaXD/VLDP/circuits/common"
	"github.com/PlasmaXD/VLDP/config"
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/PlasmaXD/VLDP/pkg/setup"
	"github.com/PlasmaXD/VLDP/protocol"
	tw "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/backend/groth16"
)

// VariantName identifies this relation on the wire and in logs.
const VariantName = "base"

// Skeleton returns a Circuit with every constant field populated and every
// witness field at its zero value — compilable, but never provable; used
// only to derive a constraint system and Groth16 keys at setup time.
func Skeleton(p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) *circbase.Circuit {
	return &circbase.Circuit{
		Params:       common.Params{K: p.K, IsRealInput: p.IsRealInput, SelectorBytes: p.RandomnessBytes, GammaBytes: p.GammaBytes},
		ServerSigPKX: bigIntOf(serverPK.A.X),
		ServerSigPKY: bigIntOf(serverPK.A.Y),
		GX:           bigIntOf(ck.G.X),
		GY:           bigIntOf(ck.G.Y),
		HX:           bigIntOf(ck.H.X),
		HY:           bigIntOf(ck.H.Y),
	}
}

// BuildVariant compiles the Base circuit for p and runs Groth16 setup,
// returning a protocol.Variant ready to hand to protocol.NewClient/
// NewServer. Production deployments should prefer an MPC ceremony
// (pkg/setup's ceremony commands) over groth16.Setup directly; BuildVariant
// is the dev/test path.
func BuildVariant(p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) (protocol.Variant, error) {
	ccs, err := setup.CompileCircuit(Skeleton(p, ck, serverPK))
	if err != nil {
		return protocol.Variant{}, fmt.Errorf("base: compile: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return protocol.Variant{}, fmt.Errorf("base: setup: %w", err)
	}
	return protocol.Variant{Name: VariantName, Params: p, ConstraintSystem: ccs, ProvingKey: pk, VerifyingKey: vk}, nil
}

// EncodeCommitmentOrRoot renders the Base commitment as the wire's
// CommitmentOrRoot field (spec §6: 64 bytes, X||Y).
func EncodeCommitmentOrRoot(commitment tw.PointAffine) []byte {
	cx, cy := coords(commitment)
	return protocol.EncodePoint(cx, cy)
}

// Phase1Request builds the client's first wire message.
func Phase1Request(clientPK eddsa.PublicKey, commitment tw.PointAffine, t *big.Int, p config.Parameters) protocol.Phase1Request {
	return protocol.Phase1Request{
		CommitmentOrRoot: EncodeCommitmentOrRoot(commitment),
		ClientSigPK:      clientPK.Bytes(),
		Time:             protocol.EncodeTime(t, p.TimeBytes),
	}
}

// Phase2Request builds the client's second wire message from a prepared
// witness result, the server's Phase-1 response, and the generated proof.
func Phase2Request(result *circbase.WitnessResult, clientPK eddsa.PublicKey, serverSeed *big.Int, serverSig []byte, t *big.Int, p config.Parameters, proof groth16.Proof) (protocol.Phase2Request, error) {
	proofBytes, err := protocol.EncodeProof(proof)
	if err != nil {
		return protocol.Phase2Request{}, fmt.Errorf("base: encode proof: %w", err)
	}
	return protocol.Phase2Request{
		ClientSigPK:      clientPK.Bytes(),
		CommitmentOrRoot: EncodeCommitmentOrRoot(result.Commitment),
		ServerSeed:       protocol.EncodeElement(serverSeed),
		ServerSig:        serverSig,
		Time:             protocol.EncodeTime(t, p.TimeBytes),
		Y:                result.Y.Uint64(),
		Proof:            proofBytes,
	}, nil
}

// ServerMessage recomputes the native hash the server signs in Phase 1,
// the counterpart of Circuit.Define's in-circuit serverMsg — used by
// both the client (to verify server_sig before proving) and the server
// (to produce it).
func ServerMessage(commitment tw.PointAffine, clientPK eddsa.PublicKey, t, serverSeed *big.Int) []byte {
	cx, cy := coords(commitment)
	clientPKX, clientPKY := coords(clientPK.A)
	return crypto.HashElements(4, cx, cy, clientPKX, clientPKY, t, serverSeed).Bytes()
}

// ReplayKey identifies a (commitment, seed) pair for protocol.Server's
// one-shot-use admission check (spec §4.7).
func ReplayKey(req protocol.Phase2Request) string {
	return fmt.Sprintf("%x:%x", req.CommitmentOrRoot, req.ServerSeed)
}

// PublicAssignment reconstructs a Circuit assignment carrying only the
// public fields decoded from req, with every private field zeroed. It is
// used solely to build the public witness for groth16.Verify — the
// private zero values never participate in verification since
// witness.Public() strips them before groth16.Verify ever sees them.
func PublicAssignment(req protocol.Phase2Request, p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) (*circbase.Circuit, error) {
	cx, cy, err := protocol.DecodePoint(req.CommitmentOrRoot)
	if err != nil {
		return nil, fmt.Errorf("base: decode commitment: %w", err)
	}
	a := Skeleton(p, ck, serverPK)
	a.CommitmentX = cx
	a.CommitmentY = cy
	a.ServerSeed = protocol.DecodeElement(req.ServerSeed)
	a.Time = protocol.DecodeTime(req.Time)
	a.Gamma = new(big.Int).SetUint64(p.Gamma)
	a.Y = new(big.Int).SetUint64(req.Y)
	a.X = big.NewInt(0)
	a.Rc = big.NewInt(0)
	a.Rho = big.NewInt(0)
	a.ClientSigPK.Assign(tedwards.BN254, req.ClientSigPK)
	a.ServerSig.Assign(tedwards.BN254, req.ServerSig)
	// ClientSig is never transmitted: constraint 4 (spec §4.2) checks it
	// only inside the proof the client already produced. A placeholder
	// all-zero signature (the curve's neutral point, scalar 0) fills the
	// private witness slot so NewWitness has a value to walk; Public()
	// strips it before groth16.Verify ever sees it.
	a.ClientSig.Assign(tedwards.BN254, make([]byte, 64))
	return a, nil
}

func coords(p tw.PointAffine) (*big.Int, *big.Int) {
	var x, y big.Int
	p.X.BigInt(&x)
	p.Y.BigInt(&y)
	return &x, &y
}

func bigIntOf(e interface{ BigInt(*big.Int) *big.Int }) *big.Int {
	var v big.Int
	e.BigInt(&v)
	return &v
}
