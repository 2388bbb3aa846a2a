package protocol

import (
	"sync"

	"github.com/PlasmaXD/VLDP/config"
	"github.com/PlasmaXD/VLDP/vldperr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/witness"
	"github.com/rs/zerolog"
)

// Variant bundles everything a deployment fixes once at setup: the
// compiled circuit, its Groth16 keys, and the parameter tuple they were
// compiled for (spec §9's "tagged variant bundle fixed at setup", used
// here instead of runtime-polymorphic primitive selection). A Variant is
// immutable after construction and safe to share across every session and
// goroutine (spec §5's "proving/verification keys and circuit descriptors
// are read-only after setup and freely shared").
type Variant struct {
	Name             string
	Params           config.Parameters
	ConstraintSystem constraint.ConstraintSystem
	ProvingKey       groth16.ProvingKey
	VerifyingKey     groth16.VerifyingKey
}

// Server is the generic server-side session engine of spec §4.7, shared
// across Base/Expand/Shuffle. Decoding a wire message into a circuit
// witness is protocol-specific and lives in protocol/{base,expand,
// shuffle}; Server only needs the decoded public witness to run
// groth16.Verify, plus a replay key to enforce one-shot use.
type Server struct {
	Variant          Variant
	SigningKey       eddsa.PrivateKey
	AcceptanceWindow config.AcceptanceWindow
	Log              zerolog.Logger

	mu       sync.RWMutex
	consumed map[string]struct{}
}

// NewServer constructs a Server for one Variant. window governs the
// Phase-2 timestamp acceptance check (spec §3, §7).
func NewServer(v Variant, signingKey eddsa.PrivateKey, window config.AcceptanceWindow, log zerolog.Logger) *Server {
	return &Server{
		Variant:          v,
		SigningKey:       signingKey,
		AcceptanceWindow: window,
		Log:              log.With().Str("variant", v.Name).Logger(),
		consumed:         make(map[string]struct{}),
	}
}

// CheckWindow enforces the acceptance window: t must fall within
// [now-BeforeSeconds, now+AfterSeconds].
func (s *Server) CheckWindow(t, now int64) error {
	delta := now - t
	if delta > s.AcceptanceWindow.BeforeSeconds || delta < -s.AcceptanceWindow.AfterSeconds {
		return vldperr.Newf(vldperr.OutOfWindow, "time %d outside acceptance window at %d", t, now)
	}
	return nil
}

// Admit performs the one-shot-use admission check for key: a string
// uniquely identifying (C, s) for Base/Shuffle, or (C_root, leaf index)
// for Expand. It takes only the read lock; callers must call Consume
// after a successful verification to actually record the key as spent —
// this mirrors spec §5's "read-only admission checks under a shared
// section, exclusive section for recording".
func (s *Server) Admit(key string) error {
	s.mu.RLock()
	_, seen := s.consumed[key]
	s.mu.RUnlock()
	if seen {
		return vldperr.Newf(vldperr.Replay, "key %q already consumed", key)
	}
	return nil
}

// Consume records key as spent after a successful Phase-2 verification.
func (s *Server) Consume(key string) {
	s.mu.Lock()
	s.consumed[key] = struct{}{}
	s.mu.Unlock()
}

// Prune drops every consumed key, the time-window expiry sweep spec §4.7
// describes ("the map is pruned on verdict or on time-window expiry").
// Per-verdict pruning of a single key isn't needed: a rejected session's
// key was never added by Consume in the first place.
func (s *Server) Prune() {
	s.mu.Lock()
	s.consumed = make(map[string]struct{})
	s.mu.Unlock()
}

// VerifyProof runs groth16.Verify against the Variant's fixed verifying
// key. Callers build publicWitness from the protocol-specific circuit
// assignment (protocol/base.PublicAssignment and its Expand/Shuffle
// counterparts).
func (s *Server) VerifyProof(proof groth16.Proof, publicWitness witness.Witness) error {
	if err := groth16.Verify(proof, s.Variant.VerifyingKey, publicWitness); err != nil {
		return vldperr.New(vldperr.ProofInvalid, err)
	}
	return nil
}
