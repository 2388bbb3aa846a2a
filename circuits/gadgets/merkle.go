package gadgets

import "github.com/consensys/gnark/frontend"

// MaxMerkleDepth bounds the compiled circuit's Merkle path array size. A
// session's actual tree may be shallower (config.Parameters.MerkleDepth);
// unused levels are padded with a sibling of zero and skipped, the same
// padding convention the teacher's MerkleProofCircuit uses.
const MaxMerkleDepth = 16

// MerklePath is the in-circuit witness shape for Expand's authentication
// path: one sibling and one direction bit per level, direction == 1
// meaning the current node is the right child (sibling is on the left).
type MerklePath struct {
	Siblings [MaxMerkleDepth]frontend.Variable
	Bits     [MaxMerkleDepth]frontend.Variable
}

// VerifyPath recomputes the root from leaf and the path's first depth
// levels and asserts it equals root. Levels at index >= depth are ignored
// entirely (depth is a circuit-compile-time constant, fixed by the
// parameter bundle P, not a witness value) so there is no padding
// ambiguity to additionally constrain, unlike the teacher's PoI circuit
// which derives depth from non-zero siblings at proving time.
func VerifyPath(api frontend.API, leaf frontend.Variable, path MerklePath, depth int, root frontend.Variable) error {
	current := leaf
	for i := 0; i < depth; i++ {
		sibling := path.Siblings[i]
		bit := path.Bits[i]

		left := api.Select(bit, sibling, current)
		right := api.Select(bit, current, sibling)

		next, err := HashNodes(api, left, right)
		if err != nil {
			return err
		}
		current = next
	}
	api.AssertIsEqual(current, root)
	return nil
}
