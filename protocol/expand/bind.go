// Package expand wires circuits/expand into the generic protocol.Client/
// protocol.Server engine. Phase 1 commits to a batch root over n = 2^d
// pre-committed per-record randomness values (spec §4.4); each of the n
// Phase-2 calls that follow opens one never-before-used leaf under that
// root and drives the same randomness-derived LDP relation Base uses.
package expand

import (
	"fmt"
	"math/big"

	"github.com/PlasmaXD/VLDP/circuits/common"
	circexpand "github.com/PlasmaXD/VLDP/circuits/expand"
	"github.com/PlasmaXD/VLDP/circuits/gadgets"
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
const VariantName = "expand"

// Skeleton returns a Circuit with every constant field populated
// (including Depth) and every witness field at its zero value, for
// compiling only.
func Skeleton(p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) *circexpand.Circuit {
	return &circexpand.Circuit{
		Params:       common.Params{K: p.K, IsRealInput: p.IsRealInput, SelectorBytes: p.RandomnessBytes, GammaBytes: p.GammaBytes},
		Depth:        p.MerkleDepth,
		ServerSigPKX: bigIntOf(serverPK.A.X),
		ServerSigPKY: bigIntOf(serverPK.A.Y),
		GX:           bigIntOf(ck.G.X),
		GY:           bigIntOf(ck.G.Y),
		HX:           bigIntOf(ck.H.X),
		HY:           bigIntOf(ck.H.Y),
	}
}

// BuildVariant compiles the Expand circuit for p and runs Groth16 setup.
func BuildVariant(p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) (protocol.Variant, error) {
	ccs, err := setup.CompileCircuit(Skeleton(p, ck, serverPK))
	if err != nil {
		return protocol.Variant{}, fmt.Errorf("expand: compile: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return protocol.Variant{}, fmt.Errorf("expand: setup: %w", err)
	}
	return protocol.Variant{Name: VariantName, Params: p, ConstraintSystem: ccs, ProvingKey: pk, VerifyingKey: vk}, nil
}

// EncodeCommitmentOrRoot renders the batch's Merkle root as the wire's
// CommitmentOrRoot field (spec §6: 32 bytes, a single field element,
// versus Base/Shuffle's 64-byte point).
func EncodeCommitmentOrRoot(root *big.Int) []byte {
	return protocol.EncodeElement(root)
}

// Phase1Request builds the client's first wire message, sent once per
// batch rather than once per record.
func Phase1Request(clientPK eddsa.PublicKey, root *big.Int, t *big.Int, p config.Parameters) protocol.Phase1Request {
	return protocol.Phase1Request{
		CommitmentOrRoot: EncodeCommitmentOrRoot(root),
		ClientSigPK:      clientPK.Bytes(),
		Time:             protocol.EncodeTime(t, p.TimeBytes),
	}
}

// Phase2Request builds one of the n per-record wire messages a batch
// yields. LeafIndex is revealed so the server can enforce the no-reuse
// invariant (spec §4.4); the opening itself — which (r_c, rho) sit behind
// that leaf — stays inside the proof's private witness.
func Phase2Request(result *circexpand.WitnessResult, clientPK eddsa.PublicKey, root, serverSeed *big.Int, serverSig []byte, t *big.Int, leafIndex int, p config.Parameters, proof groth16.Proof) (protocol.Phase2Request, error) {
	proofBytes, err := protocol.EncodeProof(proof)
	if err != nil {
		return protocol.Phase2Request{}, fmt.Errorf("expand: encode proof: %w", err)
	}
	idx := uint32(leafIndex)
	return protocol.Phase2Request{
		ClientSigPK:      clientPK.Bytes(),
		CommitmentOrRoot: EncodeCommitmentOrRoot(root),
		ServerSeed:       protocol.EncodeElement(serverSeed),
		ServerSig:        serverSig,
		Time:             protocol.EncodeTime(t, p.TimeBytes),
		Y:                result.Y.Uint64(),
		Proof:            proofBytes,
		LeafIndex:        &idx,
	}, nil
}

// ServerMessage recomputes the native hash the server signs in Phase 1,
// over the batch root rather than a per-record commitment.
func ServerMessage(root *big.Int, clientPK eddsa.PublicKey, t, serverSeed *big.Int) []byte {
	clientPKX, clientPKY := coords(clientPK.A)
	return crypto.HashElements(4, root, clientPKX, clientPKY, t, serverSeed).Bytes()
}

// ReplayKey identifies one (root, leaf index) pair for protocol.Server's
// one-shot-use admission check — Expand's no-leaf-reuse invariant is
// enforced per index within a batch, not per (C, s) pair as Base/Shuffle
// do.
func ReplayKey(req protocol.Phase2Request) (string, error) {
	if req.LeafIndex == nil {
		return "", fmt.Errorf("expand: phase2 request missing leaf index")
	}
	return fmt.Sprintf("%x:%d", req.CommitmentOrRoot, *req.LeafIndex), nil
}

// PublicAssignment reconstructs a Circuit assignment carrying only the
// public fields decoded from req, with every private field (including the
// Merkle path) zeroed — the path is never transmitted; it lives only in
// the proof the client already produced.
func PublicAssignment(req protocol.Phase2Request, p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) (*circexpand.Circuit, error) {
	root := protocol.DecodeElement(req.CommitmentOrRoot)
	a := Skeleton(p, ck, serverPK)
	a.CRoot = root
	a.ServerSeed = protocol.DecodeElement(req.ServerSeed)
	a.Time = protocol.DecodeTime(req.Time)
	a.Gamma = new(big.Int).SetUint64(p.Gamma)
	a.Y = new(big.Int).SetUint64(req.Y)
	a.X = big.NewInt(0)
	a.Rc = big.NewInt(0)
	a.Rho = big.NewInt(0)
	for i := 0; i < gadgets.MaxMerkleDepth; i++ {
		a.Path.Siblings[i] = big.NewInt(0)
		a.Path.Bits[i] = big.NewInt(0)
	}
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
