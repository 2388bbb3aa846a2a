package field

import "math/big"

// BytesToElement reads a single byte string as one big-endian integer. No
// modular reduction is applied: a string encoding a value at or above the
// scalar field modulus is returned as that value unchanged. Used
// throughout the primitive layer to move session values (seeds, nonces, timestamps) between the byte-oriented wire
// format and the arithmetic domain the circuits operate in.
func BytesToElement(data []byte) *big.Int {
	return new(big.Int).SetBytes(data)
}

// ElementToBytes renders a field element as a fixed-width big-endian byte
// string of length width, truncating to the low-order bytes if the element's
// natural encoding is wider.
func ElementToBytes(value *big.Int, width int) []byte {
	out := make([]byte, width)
	b := value.Bytes()
	if len(b) > width {
		b = b[len(b)-width:]
	}
	copy(out[width-len(b):], b)
	return out
}
