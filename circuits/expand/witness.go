package expand

import (
	"fmt"
	"math/big"

	"github.com/PlasmaXD/VLDP/circuits/common"
	"github.com/PlasmaXD/VLDP/circuits/gadgets"
	"github.com/PlasmaXD/VLDP/config"
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/PlasmaXD/VLDP/pkg/merkle"
	tw "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
)

// SessionInputs bundles the natively-computed values one Expand session's
// witness is built from: the batch tree the client committed to in Phase
// 1, the leaf index this session opens, and the same signing/randomness
// material Base needs per session.
type SessionInputs struct {
	ClientKey  eddsa.PrivateKey
	ServerKey  eddsa.PrivateKey
	Tree       *merkle.BatchTree
	LeafIndex  int
	Rc         *big.Int
	Rho        *big.Int
	ServerSeed *big.Int
	X          *big.Int
	Time       *big.Int
	Gamma      uint64
}

// WitnessResult holds the populated circuit assignment plus the public
// values a caller needs to build the wire message.
type WitnessResult struct {
	Assignment Circuit
	Y          *big.Int
}

// PrepareWitness computes every derived value of the Expand relation
// natively and returns a ready-to-prove circuit assignment. The caller is
// responsible for having built in.Tree from the batch's n per-record
// commitment fingerprints (crypto.Encode) before Phase 1, and for
// bookkeeping which leaf indices have already been consumed (spec §4.4's
// no-leaf-reuse invariant) — PrepareWitness only proves the opening, it
// does not track consumption.
func PrepareWitness(ck crypto.CommitmentKey, serverPK eddsa.PublicKey, in SessionInputs, p config.Parameters) (*WitnessResult, error) {
	path, err := in.Tree.PathFor(in.LeafIndex)
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}

	r := crypto.Derive(in.ServerSeed, in.Rc)
	root := in.Tree.RootValue()
	clientPKX, clientPKY := coords(in.ClientKey.PublicKey.A)

	serverMsg := crypto.HashElements(4, root, clientPKX, clientPKY, in.Time, in.ServerSeed)
	serverSigBytes, err := crypto.Sign(in.ServerKey, serverMsg.Bytes())
	if err != nil {
		return nil, fmt.Errorf("expand: sign server message: %w", err)
	}

	clientMsg := crypto.HashElements(4, in.X, in.Time)
	clientSigBytes, err := crypto.Sign(in.ClientKey, clientMsg.Bytes())
	if err != nil {
		return nil, fmt.Errorf("expand: sign client message: %w", err)
	}

	gamma := new(big.Int).SetUint64(in.Gamma)
	y := deriveOutput(r, in.X, gamma, p)

	var gnarkPath gadgets.MerklePath
	for i := range path.Siblings {
		gnarkPath.Siblings[i] = path.Siblings[i]
		gnarkPath.Bits[i] = boolToVariable(path.Bits[i])
	}
	for i := len(path.Siblings); i < gadgets.MaxMerkleDepth; i++ {
		gnarkPath.Siblings[i] = big.NewInt(0)
		gnarkPath.Bits[i] = big.NewInt(0)
	}

	assignment := Circuit{
		Params:       common.Params{K: p.K, IsRealInput: p.IsRealInput, SelectorBytes: p.RandomnessBytes, GammaBytes: p.GammaBytes},
		Depth:        p.MerkleDepth,
		ServerSigPKX: bigIntOf(serverPK.A.X),
		ServerSigPKY: bigIntOf(serverPK.A.Y),
		GX:           bigIntOf(ck.G.X),
		GY:           bigIntOf(ck.G.Y),
		HX:           bigIntOf(ck.H.X),
		HY:           bigIntOf(ck.H.Y),
		CRoot:        root,
		ServerSeed:   in.ServerSeed,
		Time:         in.Time,
		Gamma:        gamma,
		Y:            y,
		X:            in.X,
		Rc:           in.Rc,
		Rho:          in.Rho,
		Path:         gnarkPath,
	}
	assignment.ClientSigPK.Assign(tedwards.BN254, in.ClientKey.PublicKey.Bytes())
	assignment.ServerSig.Assign(tedwards.BN254, serverSigBytes)
	assignment.ClientSig.Assign(tedwards.BN254, clientSigBytes)

	return &WitnessResult{Assignment: assignment, Y: y}, nil
}

// deriveOutput mirrors circuits/base's helper of the same name bit-for-bit
// — the LDP relation is identical between Base and Expand, only the
// commitment-opening constraint differs.
func deriveOutput(r, x, gamma *big.Int, p config.Parameters) *big.Int {
	selectorMask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(8*p.RandomnessBytes)), big.NewInt(1))
	selector := new(big.Int).And(r, selectorMask)
	shift := uint(8 * (p.RandomnessBytes - p.GammaBytes))
	scale := new(big.Int).Lsh(big.NewInt(1), shift)
	threshold := new(big.Int).Mul(gamma, scale)
	bLDP := selector.Cmp(threshold) >= 0

	if p.IsRealInput {
		if !bLDP {
			return new(big.Int).Set(x)
		}
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(p.K)), big.NewInt(1))
		return new(big.Int).And(r, mask)
	}

	if !bLDP {
		return new(big.Int).Set(x)
	}
	k := big.NewInt(int64(p.K))
	rem := new(big.Int).Mod(r, k)
	return new(big.Int).Add(big.NewInt(1), rem)
}

func boolToVariable(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
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
