package crypto

import "math/big"

// Derive realizes the protocol's "PRF-key replacement" used by Base and
// Expand: it combines the server's seed s with the client's committed
// randomness r_c into the combined randomness r = PRF(s, r_c) that drives
// b_LDP and the LDP output. It is Poseidon2 keyed by domain tag so it
// never collides with HashElements' other uses on the same inputs.
func Derive(s, rc *big.Int) *big.Int {
	return HashElements(DomainDerivePRF, s, rc)
}

// DeriveShuffleSeed is Shuffle's variant of Derive: the server's seed s is
// combined with the client's committed seed rather than with per-session
// randomness r_c, giving r = PRF(s, seed). It uses the same domain tag as
// Derive, so the two compute the same function of their two inputs.
func DeriveShuffleSeed(s, seed *big.Int) *big.Int {
	return HashElements(DomainDerivePRF, s, seed)
}
