// Command setup compiles one of the three VLDP relations (Base, Expand,
// Shuffle) for a named parameter preset and runs Groth16 setup, mirroring
// cmd/compile's registry/subcommand shape. Unlike cmd/compile's circuits,
// every VLDP circuit needs a commitment key and a server signing key baked
// in as circuit constants before it can be compiled (spec §4.2 constraint
// 3), so "dev" here also generates a fresh server keypair and prints its
// private key once — there is nowhere else for an operator to get one.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/PlasmaXD/VLDP/config"
	"github.com/PlasmaXD/VLDP/pkg/crypto"
	"github.com/PlasmaXD/VLDP/pkg/setup"
	bindbase "github.com/PlasmaXD/VLDP/protocol/base"
	bindexpand "github.com/PlasmaXD/VLDP/protocol/expand"
	bindshuffle "github.com/PlasmaXD/VLDP/protocol/shuffle"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/frontend"
)

// presets bundles the parameter tuples a deployment can compile against.
// Real deployments would load these from a config file; the ones below
// cover spec §8's boundary-behavior scenarios (a 5-bucket histogram and a
// 32-bit-precision real-valued variant) plus one Expand batch depth.
var presets = map[string]config.Parameters{
	"histogram5": {
		InputBytes: 1, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 5, Gamma: 128, IsRealInput: false,
	},
	"real32": {
		InputBytes: 4, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		K: 32, Gamma: 128, IsRealInput: true,
	},
	"expand-d3": {
		InputBytes: 1, GammaBytes: 1, TimeBytes: 8, RandomnessBytes: 16,
		MerkleDepth: 3, K: 5, Gamma: 128, IsRealInput: false,
	},
}

func main() {
	if len(os.Args) < 4 {
		printUsage()
		os.Exit(1)
	}

	variant, presetName, mode := os.Args[1], os.Args[2], os.Args[3]

	preset, ok := presets[presetName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown preset: %s\n", presetName)
		printUsage()
		os.Exit(1)
	}
	p, err := config.New(preset)
	if err != nil {
		log.Fatalf("invalid preset %q: %v", presetName, err)
	}

	ck, err := crypto.NewCommitmentKey("vldp-" + variant)
	if err != nil {
		log.Fatalf("derive commitment key: %v", err)
	}

	name := fmt.Sprintf("%s-%s", variant, presetName)

	switch mode {
	case "dev":
		serverKP, err := crypto.GenerateKeyPair()
		if err != nil {
			log.Fatalf("generate server keypair: %v", err)
		}
		fmt.Printf("server signing key (KEEP SECRET): %s\n", hex.EncodeToString(serverKP.Private.Bytes()))
		fmt.Printf("server public key  (share with clients): %s\n", hex.EncodeToString(serverKP.Public.Bytes()))

		skeleton, err := skeletonFor(variant, p, ck, serverKP.Public)
		if err != nil {
			log.Fatal(err)
		}
		if err := setup.DevSetup(skeleton, name, name); err != nil {
			log.Fatal(err)
		}
	case "ceremony":
		if len(os.Args) < 5 {
			printUsage()
			os.Exit(1)
		}
		// The ceremony's server public key comes from whoever holds the
		// long-lived server signing key for this deployment, not a
		// freshly generated one — p2-init/p2-verify need the real
		// circuit, so the operator must supply it out of band.
		handleCeremony(os.Args[4], variant, name, p, ck)
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode: %s (want dev or ceremony)\n", mode)
		printUsage()
		os.Exit(1)
	}
}

// ceremonySkeleton builds the skeleton circuit the MPC ceremony compiles
// against. Every VLDP circuit constant except the server public key is
// known at this point; the ceremony's coordinator is expected to plug in
// the deployment's actual server public key before p2-init, since that
// key is baked into the constraint system the ceremony seals.
func ceremonySkeleton(variant string, p config.Parameters, ck crypto.CommitmentKey, serverPKHex string) (frontend.Circuit, error) {
	pkBytes, err := hex.DecodeString(serverPKHex)
	if err != nil {
		return nil, fmt.Errorf("decode server public key: %w", err)
	}
	serverPK, err := crypto.ParsePublicKey(pkBytes)
	if err != nil {
		return nil, err
	}
	return skeletonFor(variant, p, ck, serverPK)
}

func handleCeremony(step, variant, name string, p config.Parameters, ck crypto.CommitmentKey) {
	switch step {
	case "p1-init":
		serverKP, err := crypto.GenerateKeyPair()
		if err != nil {
			log.Fatalf("generate placeholder server keypair: %v", err)
		}
		skeleton, err := skeletonFor(variant, p, ck, serverKP.Public)
		if err != nil {
			log.Fatal(err)
		}
		if err := setup.CeremonyP1Init(skeleton); err != nil {
			log.Fatal(err)
		}
	case "p1-contribute":
		if err := setup.CeremonyP1Contribute(); err != nil {
			log.Fatal(err)
		}
	case "p1-verify":
		if len(os.Args) < 6 {
			log.Fatalf("usage: go run ./cmd/setup %s ... ceremony p1-verify BEACON_HEX", variant)
		}
		serverKP, err := crypto.GenerateKeyPair()
		if err != nil {
			log.Fatalf("generate placeholder server keypair: %v", err)
		}
		skeleton, err := skeletonFor(variant, p, ck, serverKP.Public)
		if err != nil {
			log.Fatal(err)
		}
		if err := setup.CeremonyP1Verify(skeleton, os.Args[5]); err != nil {
			log.Fatal(err)
		}
	case "p2-init":
		if len(os.Args) < 6 {
			log.Fatalf("usage: go run ./cmd/setup %s ... ceremony p2-init SERVER_PUBLIC_KEY_HEX", variant)
		}
		skeleton, err := ceremonySkeleton(variant, p, ck, os.Args[5])
		if err != nil {
			log.Fatal(err)
		}
		if err := setup.CeremonyP2Init(skeleton); err != nil {
			log.Fatal(err)
		}
	case "p2-contribute":
		if err := setup.CeremonyP2Contribute(); err != nil {
			log.Fatal(err)
		}
	case "p2-verify":
		if len(os.Args) < 7 {
			log.Fatalf("usage: go run ./cmd/setup %s ... ceremony p2-verify SERVER_PUBLIC_KEY_HEX BEACON_HEX", variant)
		}
		skeleton, err := ceremonySkeleton(variant, p, ck, os.Args[5])
		if err != nil {
			log.Fatal(err)
		}
		if err := setup.CeremonyP2Verify(skeleton, os.Args[6], name, name); err != nil {
			log.Fatal(err)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func skeletonFor(variant string, p config.Parameters, ck crypto.CommitmentKey, serverPK eddsa.PublicKey) (frontend.Circuit, error) {
	switch variant {
	case "base":
		return bindbase.Skeleton(p, ck, serverPK), nil
	case "expand":
		return bindexpand.Skeleton(p, ck, serverPK), nil
	case "shuffle":
		return bindshuffle.Skeleton(p, ck, serverPK), nil
	default:
		return nil, fmt.Errorf("unknown variant: %s (want base, expand, or shuffle)", variant)
	}
}

func printUsage() {
	fmt.Println(`Usage:
  go run ./cmd/setup <variant> <preset> dev

  go run ./cmd/setup <variant> <preset> ceremony p1-init
  go run ./cmd/setup <variant> <preset> ceremony p1-contribute
  go run ./cmd/setup <variant> <preset> ceremony p1-verify BEACON_HEX

  go run ./cmd/setup <variant> <preset> ceremony p2-init SERVER_PUBLIC_KEY_HEX
  go run ./cmd/setup <variant> <preset> ceremony p2-contribute
  go run ./cmd/setup <variant> <preset> ceremony p2-verify SERVER_PUBLIC_KEY_HEX BEACON_HEX

  variant: base | expand | shuffle
  preset:  histogram5 | real32 | expand-d3

Example:
  go run ./cmd/setup base histogram5 dev
  go run ./cmd/setup expand expand-d3 dev
  go run ./cmd/setup base histogram5 ceremony p1-init

Every VLDP circuit bakes a commitment key and a server signing key in as
circuit constants (spec §4.2 constraint 3): "dev" generates a fresh server
keypair per run and prints the private key once. Production deployments
should run the MPC ceremony instead: Phase 1 is circuit-independent (its
skeleton's server key is a placeholder, overwritten once sealed), but
Phase 2 bakes in the deployment's real server public key, which the
coordinator must supply via SERVER_PUBLIC_KEY_HEX before p2-init.

Ceremony workflow (Groth16 only, 1-of-N honest):
  1. p1-init          Coordinator creates the initial Phase 1 state
  2. p1-contribute    Each participant contributes (repeat N times)
  3. p1-verify        Coordinator verifies all & seals with a public beacon
  4. p2-init          Coordinator initializes Phase 2 with the real circuit
  5. p2-contribute    Each participant contributes (repeat M times)
  6. p2-verify        Coordinator verifies all, seals & exports final keys

Beacon: use a public randomness source (e.g. League of Entropy) evaluated
AFTER the last contribution.`)
}
