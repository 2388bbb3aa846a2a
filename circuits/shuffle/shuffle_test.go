package shuffle_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/PlasmaXD/VLDP/circuits/common"
	"github.com/PlasmaXD/VLDP/circuits/shuffle"
	"github.com/PlasmaXD/VLDP/config"
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/PlasmaXD/VLDP/pkg/setup"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
)

func fieldToBig(e interface{ BigInt(*big.Int) *big.Int }) *big.Int {
	var v big.Int
	e.BigInt(&v)
	return &v
}

func newSessionInputs(t *testing.T, x, seed int64, gamma uint64) (shuffle.SessionInputs, crypto.KeyPair) {
	t.Helper()

	clientKP, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate client key: %v", err)
	}
	serverKP, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate server key: %v", err)
	}

	return shuffle.SessionInputs{
		ClientKey:  clientKP.Private,
		ServerKey:  serverKP.Private,
		Seed:       big.NewInt(seed),
		Rho:        big.NewInt(13),
		ServerSeed: big.NewInt(7777777),
		X:          big.NewInt(x),
		Time:       big.NewInt(time.Now().Unix()),
		Gamma:      gamma,
	}, serverKP
}

func compileAndSetup(t *testing.T, p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) (constraint.ConstraintSystem, groth16.ProvingKey, groth16.VerifyingKey) {
	t.Helper()

	skeleton := &shuffle.Circuit{
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

func proveAndVerify(t *testing.T, ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey, assignment *shuffle.Circuit) {
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

// TestShuffleSeedCommitmentEndToEnd proves and verifies a session whose
// commitment binds a seed rather than per-session randomness.
func TestShuffleSeedCommitmentEndToEnd(t *testing.T) {
	p, err := config.New(config.Parameters{
		InputBytes: 1, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 5, Gamma: 0, IsRealInput: false,
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}

	ck, err := crypto.NewCommitmentKey("vldp-shuffle-test")
	if err != nil {
		t.Fatalf("new commitment key: %v", err)
	}

	in, serverKP := newSessionInputs(t, 2, 55, p.Gamma)
	ccs, pk, vk := compileAndSetup(t, p, ck, serverKP.Public)

	result, err := shuffle.PrepareWitness(ck, serverKP.Public, in, p)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}
	if result.Y.Cmp(in.X) == 0 {
		t.Fatalf("gamma=0 should never pass x through untouched, got y=x=%v", result.Y)
	}

	proveAndVerify(t, ccs, pk, vk, &result.Assignment)
}

// TestShuffleVerificationIndependentOfArrivalOrder proves two independent
// sessions out of submission order and checks both still verify — modeling
// the shuffler's message reordering, which spec §4.5 states must not
// affect server verification since each proof is self-contained.
func TestShuffleVerificationIndependentOfArrivalOrder(t *testing.T) {
	p, err := config.New(config.Parameters{
		InputBytes: 1, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 5, Gamma: 0xff, IsRealInput: false,
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}

	ck, err := crypto.NewCommitmentKey("vldp-shuffle-test")
	if err != nil {
		t.Fatalf("new commitment key: %v", err)
	}

	inA, serverKPA := newSessionInputs(t, 1, 10, p.Gamma)
	inB, serverKPB := newSessionInputs(t, 4, 20, p.Gamma)

	ccsA, pkA, vkA := compileAndSetup(t, p, ck, serverKPA.Public)
	ccsB, pkB, vkB := compileAndSetup(t, p, ck, serverKPB.Public)

	resultB, err := shuffle.PrepareWitness(ck, serverKPB.Public, inB, p)
	if err != nil {
		t.Fatalf("prepare witness B: %v", err)
	}
	resultA, err := shuffle.PrepareWitness(ck, serverKPA.Public, inA, p)
	if err != nil {
		t.Fatalf("prepare witness A: %v", err)
	}

	// Prove and verify B before A, the reverse of the order the two
	// sessions were set up in, as a shuffler delivering messages out of
	// order would.
	proveAndVerify(t, ccsB, pkB, vkB, &resultB.Assignment)
	proveAndVerify(t, ccsA, pkA, vkA, &resultA.Assignment)
}
