package gadgets

import "github.com/consensys/gnark/frontend"

// Derive computes r = derive(s, x) in-circuit (spec §4.2 constraint 2),
// the bit-exact counterpart of pkg/crypto.Derive/DeriveShuffleSeed. Both
// Base/Expand (keyed on r_c) and Shuffle (keyed on a committed seed) call
// this with the same domain tag — only which committed value feeds the
// second argument differs, so there is no protocol-specific variant to
// express here.
func Derive(api frontend.API, s, x frontend.Variable) (frontend.Variable, error) {
	return HashElements(api, domainDerivePRF, s, x)
}
