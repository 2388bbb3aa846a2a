package protocol_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	circbase "github.com/PlasmaXD/VLDP/circuits/base"
	circexpand "github.com/PlasmaXD/VLDP/circuits/expand"
	"github.com/PlasmaXD/VLDP/config"
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/PlasmaXD/VLDP/pkg/merkle"
	"github.com/PlasmaXD/VLDP/protocol"
	bindbase "github.com/PlasmaXD/VLDP/protocol/base"
	bindexpand "github.com/PlasmaXD/VLDP/protocol/expand"
	"github.com/PlasmaXD/VLDP/vldperr"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog"
)

// runBaseSession drives one full Base session through the client/server
// engine and returns the server's verification error, if any.
func runBaseSession(t *testing.T, p config.Parameters, x int64, tamperProof bool) error {
	t.Helper()

	ck, err := crypto.NewCommitmentKey("vldp-base-test")
	if err != nil {
		t.Fatalf("commitment key: %v", err)
	}
	clientKP, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("client key: %v", err)
	}
	serverKP, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("server key: %v", err)
	}

	variant, err := bindbase.BuildVariant(p, ck, serverKP.Public)
	if err != nil {
		t.Fatalf("build variant: %v", err)
	}

	log := zerolog.Nop()
	client := protocol.NewClient(variant, clientKP.Private, serverKP.Public, log)
	server := protocol.NewServer(variant, serverKP.Private, config.DefaultAcceptanceWindow, log)

	now := time.Now().Unix()
	commitment := ck.Commit(big.NewInt(999), big.NewInt(13))
	_ = bindbase.Phase1Request(clientKP.Public, commitment, big.NewInt(now), p)
	client.AwaitSeed()

	serverSeed := big.NewInt(42424242)
	serverMsg := bindbase.ServerMessage(commitment, clientKP.Public, big.NewInt(now), serverSeed)
	serverSig, err := crypto.Sign(serverKP.Private, serverMsg)
	if err != nil {
		t.Fatalf("server sign: %v", err)
	}

	if err := client.AcceptSeed(serverMsg, serverSig); err != nil {
		t.Fatalf("client rejected valid server signature: %v", err)
	}

	in := circbase.SessionInputs{
		ClientKey: clientKP.Private, ServerKey: serverKP.Private,
		Rc: big.NewInt(999), Rho: big.NewInt(13), ServerSeed: serverSeed,
		X: big.NewInt(x), Time: big.NewInt(now), Gamma: p.Gamma,
	}
	result, err := circbase.PrepareWitness(ck, serverKP.Public, in, p)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}

	proof, err := client.Prove(&result.Assignment)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	req, err := bindbase.Phase2Request(result, clientKP.Public, serverSeed, serverSig, big.NewInt(now), p, proof)
	if err != nil {
		t.Fatalf("build phase2 request: %v", err)
	}

	if tamperProof {
		tampered := make([]byte, len(req.Proof))
		copy(tampered, req.Proof)
		tampered[0] ^= 0xff
		req.Proof = tampered
	}

	if err := server.CheckWindow(new(big.Int).SetBytes(req.Time).Int64(), now); err != nil {
		t.Fatalf("time window rejected a fresh session: %v", err)
	}

	key := bindbase.ReplayKey(req)
	if err := server.Admit(key); err != nil {
		t.Fatalf("admit rejected a fresh session: %v", err)
	}

	assignment, err := bindbase.PublicAssignment(req, p, ck, serverKP.Public)
	if err != nil {
		t.Fatalf("decode public assignment: %v", err)
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("build witness: %v", err)
	}
	publicWitness, err := w.Public()
	if err != nil {
		t.Fatalf("extract public witness: %v", err)
	}

	proofObj, err := protocol.DecodeProof(req.Proof)
	if err != nil {
		t.Fatalf("decode proof: %v", err)
	}

	verr := server.VerifyProof(proofObj, publicWitness)
	if verr == nil {
		server.Consume(key)
	}
	return verr
}

// TestBaseHistogramGammaZeroEndToEnd drives the full Base session through
// the generic protocol engine at gamma=0 (always randomized, spec §8).
func TestBaseHistogramGammaZeroEndToEnd(t *testing.T) {
	p, err := config.New(config.Parameters{
		InputBytes: 1, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 5, Gamma: 0, IsRealInput: false,
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	if err := runBaseSession(t, p, 3, false); err != nil {
		t.Fatalf("session failed: %v", err)
	}
}

// TestBaseHistogramGammaMaxEndToEnd drives it at the truthful boundary.
func TestBaseHistogramGammaMaxEndToEnd(t *testing.T) {
	p, err := config.New(config.Parameters{
		InputBytes: 1, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 5, Gamma: 0xff, IsRealInput: false,
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	if err := runBaseSession(t, p, 4, false); err != nil {
		t.Fatalf("session failed: %v", err)
	}
}

// TestBaseRealValuedEndToEnd drives the fixed-point real-valued variant.
func TestBaseRealValuedEndToEnd(t *testing.T) {
	p, err := config.New(config.Parameters{
		InputBytes: 4, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 16, Gamma: 0xff, IsRealInput: true,
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	if err := runBaseSession(t, p, 1234, false); err != nil {
		t.Fatalf("session failed: %v", err)
	}
}

// TestBaseTamperedProofRejected flips a bit in the encoded proof and
// expects the server to reject it with vldperr.ProofInvalid.
func TestBaseTamperedProofRejected(t *testing.T) {
	p, err := config.New(config.Parameters{
		InputBytes: 1, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 5, Gamma: 0xff, IsRealInput: false,
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	err = runBaseSession(t, p, 2, true)
	if err == nil {
		t.Fatalf("expected tampered proof to be rejected")
	}
	if !errors.Is(err, vldperr.ProofInvalid) {
		t.Fatalf("expected a ProofInvalid error, got: %v", err)
	}
}

// TestExpandLeafReplayRejected opens two distinct leaves successfully and
// then replays the first leaf's already-consumed index, which
// protocol.Server.Admit must reject (spec §4.4's no-leaf-reuse invariant).
func TestExpandLeafReplayRejected(t *testing.T) {
	p, err := config.New(config.Parameters{
		InputBytes: 1, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		MerkleDepth: 2, K: 5, Gamma: 0xff, IsRealInput: false,
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}

	ck, err := crypto.NewCommitmentKey("vldp-expand-test")
	if err != nil {
		t.Fatalf("commitment key: %v", err)
	}
	clientKP, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("client key: %v", err)
	}
	serverKP, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("server key: %v", err)
	}

	variant, err := bindexpand.BuildVariant(p, ck, serverKP.Public)
	if err != nil {
		t.Fatalf("build variant: %v", err)
	}
	log := zerolog.Nop()
	server := protocol.NewServer(variant, serverKP.Private, config.DefaultAcceptanceWindow, log)

	n := p.BatchSize()
	rcs := make([]*big.Int, n)
	rhos := make([]*big.Int, n)
	leaves := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		rcs[i] = big.NewInt(int64(1000 + i))
		rhos[i] = big.NewInt(int64(2000 + i))
		leaves[i] = crypto.Encode(ck.Commit(rcs[i], rhos[i]))
	}
	tree, err := merkle.BuildBatchTree(leaves, p.MerkleDepth)
	if err != nil {
		t.Fatalf("build batch tree: %v", err)
	}

	now := big.NewInt(time.Now().Unix())
	serverSeed := big.NewInt(77)

	open := func(leafIndex int) (protocol.Phase2Request, error) {
		in := circexpand.SessionInputs{
			ClientKey: clientKP.Private, ServerKey: serverKP.Private,
			Tree: tree, LeafIndex: leafIndex,
			Rc: rcs[leafIndex], Rho: rhos[leafIndex], ServerSeed: serverSeed,
			X: big.NewInt(int64(leafIndex)), Time: now, Gamma: p.Gamma,
		}
		result, err := circexpand.PrepareWitness(ck, serverKP.Public, in, p)
		if err != nil {
			return protocol.Phase2Request{}, err
		}
		serverMsg := bindexpand.ServerMessage(tree.RootValue(), clientKP.Public, now, serverSeed)
		serverSig, err := crypto.Sign(serverKP.Private, serverMsg)
		if err != nil {
			return protocol.Phase2Request{}, err
		}
		client := protocol.NewClient(variant, clientKP.Private, serverKP.Public, log)
		client.AwaitSeed()
		if err := client.AcceptSeed(serverMsg, serverSig); err != nil {
			return protocol.Phase2Request{}, err
		}
		proof, err := client.Prove(&result.Assignment)
		if err != nil {
			return protocol.Phase2Request{}, err
		}
		return bindexpand.Phase2Request(result, clientKP.Public, tree.RootValue(), serverSeed, serverSig, now, leafIndex, p, proof)
	}

	verify := func(req protocol.Phase2Request) error {
		key, err := bindexpand.ReplayKey(req)
		if err != nil {
			return err
		}
		if err := server.Admit(key); err != nil {
			return err
		}
		assignment, err := bindexpand.PublicAssignment(req, p, ck, serverKP.Public)
		if err != nil {
			return err
		}
		w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
		if err != nil {
			return err
		}
		publicWitness, err := w.Public()
		if err != nil {
			return err
		}
		proofObj, err := protocol.DecodeProof(req.Proof)
		if err != nil {
			return err
		}
		if err := server.VerifyProof(proofObj, publicWitness); err != nil {
			return err
		}
		server.Consume(key)
		return nil
	}

	reqA, err := open(0)
	if err != nil {
		t.Fatalf("open leaf 0: %v", err)
	}
	if err := verify(reqA); err != nil {
		t.Fatalf("verify leaf 0: %v", err)
	}

	reqB, err := open(1)
	if err != nil {
		t.Fatalf("open leaf 1: %v", err)
	}
	if err := verify(reqB); err != nil {
		t.Fatalf("verify leaf 1: %v", err)
	}

	reqReplay, err := open(0)
	if err != nil {
		t.Fatalf("re-open leaf 0: %v", err)
	}
	if err := verify(reqReplay); err == nil {
		t.Fatalf("expected replay of leaf 0 to be rejected")
	} else if !errors.Is(err, vldperr.Replay) {
		t.Fatalf("expected a Replay error, got: %v", err)
	}
}
