package shuffle

import (
	"fmt"
	"math/big"

	"github.com/PlasmaXD/VLDP/circuits/common"
	"github.com/PlasmaXD/VLDP/config"
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	tw "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
)

// SessionInputs bundles the natively-computed session values a Shuffle
// witness is built from. Seed replaces Base's r_c as the committed value;
// everything else matches Base's SessionInputs.
type SessionInputs struct {
	ClientKey  eddsa.PrivateKey
	ServerKey  eddsa.PrivateKey
	Seed       *big.Int
	Rho        *big.Int
	ServerSeed *big.Int
	X          *big.Int
	Time       *big.Int
	Gamma      uint64
}

// WitnessResult holds the populated circuit assignment plus the derived
// public values a caller needs to build the wire message. The commitment
// and proof are what the shuffler relays untouched to the server — the
// shuffler never sees Seed, Rho, X, or either signing key.
type WitnessResult struct {
	Assignment Circuit
	Commitment tw.PointAffine
	Y          *big.Int
}

// PrepareWitness computes every derived value of the Shuffle relation
// natively and returns a ready-to-prove circuit assignment.
func PrepareWitness(ck crypto.CommitmentKey, serverPK eddsa.PublicKey, in SessionInputs, p config.Parameters) (*WitnessResult, error) {
	commitment := ck.Commit(in.Seed, in.Rho)
	r := crypto.DeriveShuffleSeed(in.ServerSeed, in.Seed)

	cx, cy := coords(commitment)
	clientPKX, clientPKY := coords(in.ClientKey.PublicKey.A)

	serverMsg := crypto.HashElements(4, cx, cy, clientPKX, clientPKY, in.Time, in.ServerSeed)
	serverSigBytes, err := crypto.Sign(in.ServerKey, serverMsg.Bytes())
	if err != nil {
		return nil, fmt.Errorf("shuffle: sign server message: %w", err)
	}

	clientMsg := crypto.HashElements(4, in.X, in.Time)
	clientSigBytes, err := crypto.Sign(in.ClientKey, clientMsg.Bytes())
	if err != nil {
		return nil, fmt.Errorf("shuffle: sign client message: %w", err)
	}

	gamma := new(big.Int).SetUint64(in.Gamma)
	y := deriveOutput(r, in.X, gamma, p)

	assignment := Circuit{
		Params:       common.Params{K: p.K, IsRealInput: p.IsRealInput, SelectorBytes: p.RandomnessBytes, GammaBytes: p.GammaBytes},
		ServerSigPKX: bigIntOf(serverPK.A.X),
		ServerSigPKY: bigIntOf(serverPK.A.Y),
		GX:           bigIntOf(ck.G.X),
		GY:           bigIntOf(ck.G.Y),
		HX:           bigIntOf(ck.H.X),
		HY:           bigIntOf(ck.H.Y),
		CommitmentX:  cx,
		CommitmentY:  cy,
		ServerSeed:   in.ServerSeed,
		Time:         in.Time,
		Gamma:        gamma,
		Y:            y,
		X:            in.X,
		Seed:         in.Seed,
		Rho:          in.Rho,
	}
	assignment.ClientSigPK.Assign(tedwards.BN254, in.ClientKey.PublicKey.Bytes())
	assignment.ServerSig.Assign(tedwards.BN254, serverSigBytes)
	assignment.ClientSig.Assign(tedwards.BN254, clientSigBytes)

	return &WitnessResult{Assignment: assignment, Commitment: commitment, Y: y}, nil
}

// deriveOutput mirrors circuits/base's helper bit-for-bit — the LDP
// relation is identical across all three protocols.
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
