package crypto

import "golang.org/x/crypto/blake2s"

// Fingerprint returns a BLAKE2s-256 digest of a serialized wire message.
// This is a transport-layer integrity check only — it never enters a
// circuit constraint, so it carries no bit-exactness obligation and is
// free to use a hash gnark has no matching in-circuit gadget for.
func Fingerprint(wireBytes []byte) [32]byte {
	return blake2s.Sum256(wireBytes)
}
