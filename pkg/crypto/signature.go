package crypto

import (
	"crypto/rand"
	"fmt"

	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	gcHash "github.com/consensys/gnark-crypto/hash"
)

// signatureHash is the challenge hash used inside EdDSA (spec §4.1's
// "Schnorr-style over the inner curve"). The teacher's whole primitive
// layer is built around Poseidon2 having a bit-exact in-circuit gadget;
// EdDSA's challenge hash must recompute identically on both sides of the
// relation, so it uses the same hash rather than spec.md's literal
// "Blake2s" — see DESIGN.md for the tradeoff.
const signatureHash = gcHash.POSEIDON2_BN254

// KeyPair is a generated EdDSA signing key over the BN254-embedded
// twisted-Edwards curve.
type KeyPair struct {
	Private eddsa.PrivateKey
	Public  eddsa.PublicKey
}

// GenerateKeyPair samples a fresh signing key. Used for both the client's
// and the server's signature keys (spec §3's "Keypairs").
func GenerateKeyPair() (KeyPair, error) {
	priv, err := eddsa.New(tedwards.BN254, rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("crypto: generate eddsa key: %w", err)
	}
	return KeyPair{Private: priv, Public: priv.PublicKey}, nil
}

// Sign produces a Schnorr-style signature over msg under the private key.
func Sign(priv eddsa.PrivateKey, msg []byte) ([]byte, error) {
	sig, err := priv.Sign(msg, signatureHash.New())
	if err != nil {
		return nil, fmt.Errorf("crypto: sign: %w", err)
	}
	return sig, nil
}

// ParsePublicKey decodes a public key previously serialized with
// KeyPair.Public.Bytes(), for loading a deployment's persistent server
// public key into a skeleton circuit ahead of an MPC ceremony.
func ParsePublicKey(b []byte) (eddsa.PublicKey, error) {
	var pub eddsa.PublicKey
	if _, err := pub.SetBytes(b); err != nil {
		return eddsa.PublicKey{}, fmt.Errorf("crypto: parse public key: %w", err)
	}
	return pub, nil
}

// Verify checks a signature natively. This is the server-signature check
// the client performs before proof generation (spec §4.3 Phase 2, first
// step) and the only signature check ever done purely natively — the
// client's own signature σ_c is checked only inside the circuit (spec
// §4.2, constraint 4).
func Verify(pub eddsa.PublicKey, msg, sig []byte) (bool, error) {
	ok, err := pub.Verify(sig, msg, signatureHash.New())
	if err != nil {
		return false, fmt.Errorf("crypto: verify: %w", err)
	}
	return ok, nil
}
