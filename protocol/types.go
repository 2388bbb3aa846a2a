// Package protocol implements the shared two-phase session engine spec
// §4.6/§4.7 describe, parameterized by a Variant (spec §4.3-4.5: Base,
// Expand, Shuffle) so the state machine, replay bookkeeping, and
// acceptance-window check are written once and shared across all three
// protocols.
package protocol

// ClientState is the client-side state machine of spec §4.6:
// Fresh -> AwaitingSeed -> Ready -> Emitted/Aborted. In Expand, Ready is
// re-entrant n times per batch as the index counter advances.
type ClientState int

const (
	ClientFresh ClientState = iota
	ClientAwaitingSeed
	ClientReady
	ClientEmitted
	ClientAborted
)

func (s ClientState) String() string {
	switch s {
	case ClientFresh:
		return "Fresh"
	case ClientAwaitingSeed:
		return "AwaitingSeed"
	case ClientReady:
		return "Ready"
	case ClientEmitted:
		return "Emitted"
	case ClientAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// ServerState is the server-side state machine of spec §4.7:
// Idle -> SeedIssued -> Verified/Rejected.
type ServerState int

const (
	ServerIdle ServerState = iota
	ServerSeedIssued
	ServerVerified
	ServerRejected
)

func (s ServerState) String() string {
	switch s {
	case ServerIdle:
		return "Idle"
	case ServerSeedIssued:
		return "SeedIssued"
	case ServerVerified:
		return "Verified"
	case ServerRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Zeroizer is implemented by a circuit assignment that holds one-shot
// per-session secrets (r_c or seed, rho, x) alongside its long-lived
// circuit constants. Client.Prove calls ZeroizeSecrets once the witness
// has been derived from the assignment, per spec §5's requirement that
// session secrets be cleared once they've served their purpose — the
// assignment's constants (the server's public key, the commitment
// generators) are left untouched since those are reused across sessions,
// not per-session secrets.
type Zeroizer interface {
	ZeroizeSecrets()
}
