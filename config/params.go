// Package config defines the VLDP parameter bundle P: the immutable set of
// byte-width and domain constants that both sides of a session must agree
// on before Phase 1 begins.
package config

import "fmt"

// Parameters is the immutable bundle P of spec §3: input/γ/time/randomness
// byte widths, the Merkle depth used by Expand, the output domain size (or
// fixed-point precision) K, and whether the input is real-valued or a
// histogram category.
type Parameters struct {
	// InputBytes is the byte width of the true input x.
	InputBytes int
	// GammaBytes is the byte width of the truthful-response threshold γ.
	GammaBytes int
	// TimeBytes is the byte width of the embedded timestamp t.
	TimeBytes int
	// RandomnessBytes is the byte width of the client randomness r_c.
	RandomnessBytes int
	// MerkleDepth is the Expand batch tree depth d (n = 2^d leaves). Unused
	// (must be 0) for Base and Shuffle.
	MerkleDepth int
	// K is the histogram domain size (IsRealInput == false) or the
	// fixed-point precision in bits (IsRealInput == true).
	K int
	// Gamma is the truthful-response threshold, an integer in
	// [0, 2^(8*GammaBytes)). Gamma == 0 makes b_LDP always 1 (fully
	// randomized); Gamma == 2^(8*GammaBytes)-1 makes b_LDP almost always 0
	// (truthful) — see spec §8 boundary behaviors.
	Gamma uint64
	// IsRealInput selects the LDP variant: histogram (false) or
	// fixed-point real-valued (true).
	IsRealInput bool
}

// AcceptanceWindow bounds how far a Phase-2 timestamp t may drift from the
// server's current time before OutOfWindow rejection (spec §3, §7).
type AcceptanceWindow struct {
	BeforeSeconds int64
	AfterSeconds  int64
}

// DefaultAcceptanceWindow matches the teacher's dev-mode posture: generous
// enough for non-adversarial testing, not a production recommendation.
var DefaultAcceptanceWindow = AcceptanceWindow{BeforeSeconds: 300, AfterSeconds: 300}

// maxByteWidth is the largest byte width a single BN254 scalar field
// element can hold without reduction (floor((254-1)/8)), matching the
// field-packing helper in pkg/field.
const maxByteWidth = 31

// New validates and returns a Parameters bundle. It enforces the byte-width
// ranges of spec §6 and rejects combinations that the circuits cannot
// express (e.g. a randomness width too narrow to carry both the LDP
// selector and the output body).
func New(p Parameters) (Parameters, error) {
	if p.InputBytes < 1 || p.InputBytes > 32 {
		return Parameters{}, fmt.Errorf("config: input_bytes %d out of range [1,32]", p.InputBytes)
	}
	if p.GammaBytes < 1 || p.GammaBytes > 16 {
		return Parameters{}, fmt.Errorf("config: gamma_bytes %d out of range [1,16]", p.GammaBytes)
	}
	if p.TimeBytes < 1 || p.TimeBytes > 16 {
		return Parameters{}, fmt.Errorf("config: time_bytes %d out of range [1,16]", p.TimeBytes)
	}
	if p.RandomnessBytes < 16 {
		return Parameters{}, fmt.Errorf("config: randomness_bytes %d below minimum 16", p.RandomnessBytes)
	}
	if p.RandomnessBytes > maxByteWidth {
		return Parameters{}, fmt.Errorf("config: randomness_bytes %d exceeds field capacity %d", p.RandomnessBytes, maxByteWidth)
	}
	if p.GammaBytes > maxByteWidth || p.InputBytes > maxByteWidth {
		return Parameters{}, fmt.Errorf("config: byte width exceeds field capacity %d", maxByteWidth)
	}
	if p.MerkleDepth < 0 || p.MerkleDepth > 16 {
		return Parameters{}, fmt.Errorf("config: mt_depth %d out of range [0,16]", p.MerkleDepth)
	}
	if p.K <= 0 {
		return Parameters{}, fmt.Errorf("config: K must be positive, got %d", p.K)
	}
	if p.IsRealInput && p.K > 64 {
		return Parameters{}, fmt.Errorf("config: real-valued K (precision bits) %d exceeds 64", p.K)
	}
	maxGamma := uint64(1)<<(8*uint(p.GammaBytes)) - 1
	if p.GammaBytes >= 8 {
		// Avoid uint64 overflow for the (rare) 8-byte-or-wider threshold;
		// the only boundary values spec §8 exercises are 0 and the max
		// representable uint64, both of which fit.
		maxGamma = ^uint64(0)
	}
	if p.Gamma > maxGamma {
		return Parameters{}, fmt.Errorf("config: gamma %d exceeds gamma_bytes capacity", p.Gamma)
	}
	return p, nil
}

// BatchSize returns n = 2^d, the number of leaves in an Expand batch tree.
func (p Parameters) BatchSize() int {
	return 1 << uint(p.MerkleDepth)
}
