// Package shuffle wires circuits/shuffle into the generic protocol.Client/
// protocol.Server engine. The wire shape is identical to Base's: a single
// Pedersen commitment and the same Phase1Request/Phase2Request — the
// commitment simply opens to a seed rather than per-session randomness
// (spec §4.5).
package shuffle

import (
	"fmt"
	"math/big"

	"github.com/PlasmaXD/VLDP/circuits/common"
	circshuffle "github.com/PlasmaXD/VLDP/circuits/shuffle"
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
const VariantName = "shuffle"

// Skeleton returns a Circuit with every constant field populated and every
// witness field at its zero value, for compiling only.
func Skeleton(p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) *circshuffle.Circuit {
	return &circshuffle.Circuit{
		Params:       common.Params{K: p.K, IsRealInput: p.IsRealInput, SelectorBytes: p.RandomnessBytes, GammaBytes: p.GammaBytes},
		ServerSigPKX: bigIntOf(serverPK.A.X),
		ServerSigPKY: bigIntOf(serverPK.A.Y),
		GX:           bigIntOf(ck.G.X),
		GY:           bigIntOf(ck.G.Y),
		HX:           bigIntOf(ck.H.X),
		HY:           bigIntOf(ck.H.Y),
	}
}

// BuildVariant compiles the Shuffle circuit for p and runs Groth16 setup.
func BuildVariant(p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) (protocol.Variant, error) {
	ccs, err := setup.CompileCircuit(Skeleton(p, ck, serverPK))
	if err != nil {
		return protocol.Variant{}, fmt.Errorf("shuffle: compile: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return protocol.Variant{}, fmt.Errorf("shuffle: setup: %w", err)
	}
	return protocol.Variant{Name: VariantName, Params: p, ConstraintSystem: ccs, ProvingKey: pk, VerifyingKey: vk}, nil
}

// EncodeCommitmentOrRoot renders the Shuffle commitment as the wire's
// CommitmentOrRoot field (spec §6: 64 bytes, X||Y).
func EncodeCommitmentOrRoot(commitment tw.PointAffine) []byte {
	cx, cy := coords(commitment)
	return protocol.EncodePoint(cx, cy)
}

// Phase1Request builds the client's first wire message. Per spec §4.5, the
// client sends this commitment through the shuffler, which relays it
// untouched along with every later message — the shuffler never learns
// Seed, Rho, X, or either signing key.
func Phase1Request(clientPK eddsa.PublicKey, commitment tw.PointAffine, t *big.Int, p config.Parameters) protocol.Phase1Request {
	return protocol.Phase1Request{
		CommitmentOrRoot: EncodeCommitmentOrRoot(commitment),
		ClientSigPK:      clientPK.Bytes(),
		Time:             protocol.EncodeTime(t, p.TimeBytes),
	}
}

// Phase2Request builds the client's second wire message.
func Phase2Request(result *circshuffle.WitnessResult, clientPK eddsa.PublicKey, serverSeed *big.Int, serverSig []byte, t *big.Int, p config.Parameters, proof groth16.Proof) (protocol.Phase2Request, error) {
	proofBytes, err := protocol.EncodeProof(proof)
	if err != nil {
		return protocol.Phase2Request{}, fmt.Errorf("shuffle: encode proof: %w", err)
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

// ServerMessage recomputes the native hash the server signs in Phase 1.
func ServerMessage(commitment tw.PointAffine, clientPK eddsa.PublicKey, t, serverSeed *big.Int) []byte {
	cx, cy := coords(commitment)
	clientPKX, clientPKY := coords(clientPK.A)
	return crypto.HashElements(4, cx, cy, clientPKX, clientPKY, t, serverSeed).Bytes()
}

// ReplayKey identifies a (commitment, seed) pair for protocol.Server's
// one-shot-use admission check. Note this key is keyed on the commitment
// the shuffler relayed, not on anything the shuffler could itself forge,
// since the commitment is bound into both signatures and the proof.
func ReplayKey(req protocol.Phase2Request) string {
	return fmt.Sprintf("%x:%x", req.CommitmentOrRoot, req.ServerSeed)
}

// PublicAssignment reconstructs a Circuit assignment carrying only the
// public fields decoded from req, with every private field zeroed.
func PublicAssignment(req protocol.Phase2Request, p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) (*circshuffle.Circuit, error) {
	cx, cy, err := protocol.DecodePoint(req.CommitmentOrRoot)
	if err != nil {
		return nil, fmt.Errorf("shuffle: decode commitment: %w", err)
	}
	a := Skeleton(p, ck, serverPK)
	a.CommitmentX = cx
	a.CommitmentY = cy
	a.ServerSeed = protocol.DecodeElement(req.ServerSeed)
	a.Time = protocol.DecodeTime(req.Time)
	a.Gamma = new(big.Int).SetUint64(p.Gamma)
	a.Y = new(big.Int).SetUint64(req.Y)
	a.X = big.NewInt(0)
	a.Seed = big.NewInt(0)
	a.Rho = big.NewInt(0)
	a.ClientSigPK.Assign(tedwards.BN254, req.ClientSigPK)
	a.ServerSig.Assign(tedwards.BN254, req.ServerSig)
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
