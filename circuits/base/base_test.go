package base_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/PlasmaXD/VLDP/circuits/base"
	"github.com/PlasmaXD/VLDP/circuits/common"
	"github.com/PlasmaXD/VLDP/config"
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/PlasmaXD/VLDP/pkg/setup"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
)

// newSessionInputs samples a fresh client/server key pair plus randomness
// for one Base session under p, with x and rc chosen by the caller.
func newSessionInputs(t *testing.T, x, rc int64, gamma uint64) (base.SessionInputs, crypto.KeyPair) {
	t.Helper()

	clientKP, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate client key: %v", err)
	}
	serverKP, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate server key: %v", err)
	}

	return base.SessionInputs{
		ClientKey:  clientKP.Private,
		ServerKey:  serverKP.Private,
		Rc:         big.NewInt(rc),
		Rho:        big.NewInt(7),
		ServerSeed: big.NewInt(424242),
		X:          big.NewInt(x),
		Time:       big.NewInt(time.Now().Unix()),
		Gamma:      gamma,
	}, serverKP
}

// proveAndVerify builds the witness for assignment, proves it against the
// keys compileAndSetup produced, and checks the proof verifies.
func proveAndVerify(t *testing.T, ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey, assignment *base.Circuit) {
	t.Helper()

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("create witness: %v", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		t.Fatalf("extract public witness: %v", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

// fieldToBig reduces a gnark-crypto field element to its big.Int value.
func fieldToBig(e interface{ BigInt(*big.Int) *big.Int }) *big.Int {
	var v big.Int
	e.BigInt(&v)
	return &v
}

// compileAndSetup builds the compile-time circuit skeleton for p (the
// commitment generators and server signature key are circuit constants, so
// they must already be fixed before Compile walks Define) and runs a dev
// Groth16 setup over it.
func compileAndSetup(t *testing.T, p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) (constraint.ConstraintSystem, groth16.ProvingKey, groth16.VerifyingKey) {
	t.Helper()

	skeleton := &base.Circuit{
		Params: common.Params{
			K:             p.K,
			IsRealInput:   p.IsRealInput,
			SelectorBytes: p.RandomnessBytes,
			GammaBytes:    p.GammaBytes,
		},
		ServerSigPKX: fieldToBig(serverPK.A.X),
		ServerSigPKY: fieldToBig(serverPK.A.Y),
		GX:           fieldToBig(ck.G.X),
		GY:           fieldToBig(ck.G.Y),
		HX:           fieldToBig(ck.H.X),
		HY:           fieldToBig(ck.H.Y),
	}

	ccs, err := setup.CompileCircuit(skeleton)
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}
	return ccs, pk, vk
}

// TestBaseHistogramGammaZeroAlwaysRandomized exercises spec §8's boundary
// case: gamma == 0 forces b_LDP == 1 on every session, so y is always the
// 1+(r mod K) randomized histogram category, never x.
func TestBaseHistogramGammaZeroAlwaysRandomized(t *testing.T) {
	p, err := config.New(config.Parameters{
		InputBytes: 1, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 5, Gamma: 0, IsRealInput: false,
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}

	ck, err := crypto.NewCommitmentKey("vldp-base-test")
	if err != nil {
		t.Fatalf("new commitment key: %v", err)
	}

	in, serverKP := newSessionInputs(t, 3, 11, p.Gamma)
	ccs, pk, vk := compileAndSetup(t, p, ck, serverKP.Public)

	result, err := base.PrepareWitness(ck, serverKP.Public, in, p)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}
	if result.Y.Cmp(in.X) == 0 {
		t.Fatalf("gamma=0 should never pass x through untouched, got y=x=%v", result.Y)
	}
	if result.Y.Sign() <= 0 || result.Y.Cmp(big.NewInt(int64(p.K))) > 0 {
		t.Fatalf("randomized histogram output %v out of range [1,%d]", result.Y, p.K)
	}

	proveAndVerify(t, ccs, pk, vk, &result.Assignment)
}

// TestBaseHistogramGammaMaxTruthful exercises the opposite boundary: gamma
// at its maximum representable value makes b_LDP 0 for every ordinary
// randomness draw, so y passes x through untouched.
func TestBaseHistogramGammaMaxTruthful(t *testing.T) {
	p, err := config.New(config.Parameters{
		InputBytes: 1, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 5, Gamma: 0xff, IsRealInput: false,
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}

	ck, err := crypto.NewCommitmentKey("vldp-base-test")
	if err != nil {
		t.Fatalf("new commitment key: %v", err)
	}

	in, serverKP := newSessionInputs(t, 3, 11, p.Gamma)
	ccs, pk, vk := compileAndSetup(t, p, ck, serverKP.Public)

	result, err := base.PrepareWitness(ck, serverKP.Public, in, p)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}
	if result.Y.Cmp(in.X) != 0 {
		t.Fatalf("gamma=max should pass x through for this draw, got y=%v want x=%v", result.Y, in.X)
	}

	proveAndVerify(t, ccs, pk, vk, &result.Assignment)
}

// TestBaseRealValuedFixedPoint exercises the is_real_input=true branch: the
// truthful path returns x unchanged, already treated as the fixed-point
// encoded value.
func TestBaseRealValuedFixedPoint(t *testing.T) {
	p, err := config.New(config.Parameters{
		InputBytes: 4, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 12, Gamma: 0xff, IsRealInput: true,
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}

	ck, err := crypto.NewCommitmentKey("vldp-base-test")
	if err != nil {
		t.Fatalf("new commitment key: %v", err)
	}

	in, serverKP := newSessionInputs(t, 1234, 99, p.Gamma)
	ccs, pk, vk := compileAndSetup(t, p, ck, serverKP.Public)

	result, err := base.PrepareWitness(ck, serverKP.Public, in, p)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}
	if result.Y.Cmp(in.X) != 0 {
		t.Fatalf("gamma=max should pass x through for this draw, got y=%v want x=%v", result.Y, in.X)
	}

	proveAndVerify(t, ccs, pk, vk, &result.Assignment)
}
