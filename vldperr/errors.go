// Package vldperr defines the tagged error kinds of spec §7. Every error a
// session can surface wraps one of the sentinel Kind values below, so
// callers can branch on the failure class with errors.Is while still
// getting a human-readable, %w-wrapped message for logs.
package vldperr

import "fmt"

// Kind tags the class of failure, matching spec §7's table.
type Kind int

const (
	// ParameterMismatch: byte widths disagree between client and server.
	ParameterMismatch Kind = iota
	// PrimitiveFailure: hash/commit/sign internal failure.
	PrimitiveFailure
	// SignatureInvalid: server_sig fails the client's native check.
	SignatureInvalid
	// ProofInvalid: π fails verification on the server.
	ProofInvalid
	// Replay: (C, s) or (C_root, i) was already consumed.
	Replay
	// OutOfWindow: t is outside the acceptance window.
	OutOfWindow
	// MerklePathInvalid: Expand's path does not reconstruct the root.
	MerklePathInvalid
)

func (k Kind) String() string {
	switch k {
	case ParameterMismatch:
		return "ParameterMismatch"
	case PrimitiveFailure:
		return "PrimitiveFailure"
	case SignatureInvalid:
		return "SignatureInvalid"
	case ProofInvalid:
		return "ProofInvalid"
	case Replay:
		return "Replay"
	case OutOfWindow:
		return "OutOfWindow"
	case MerklePathInvalid:
		return "MerklePathInvalid"
	default:
		return "Unknown"
	}
}

// Error is a Kind-tagged, wrapped error. Policy per spec §7: local recovery
// is never attempted, and a rejection at Kind Replay/OutOfWindow/ProofInvalid/
// MerklePathInvalid never poisons future sessions — only ParameterMismatch,
// PrimitiveFailure, and SignatureInvalid are fatal to the session that hit
// them.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers write errors.Is(err, vldperr.Replay): Kind implements
// error (via Error() below), so a bare Kind value is a valid comparison
// target without needing a type assertion to *Error at every call site.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// Error satisfies the error interface so a bare Kind can be used directly
// as an errors.Is target, e.g. errors.Is(err, vldperr.Replay).
func (k Kind) Error() string { return k.String() }

// New wraps err under the given Kind. err may be nil, in which case the
// Kind's String is the whole message.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Newf is a convenience constructor mirroring fmt.Errorf.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Fatal reports whether a Kind is fatal to the session that produced it,
// as opposed to a rejectable-but-non-poisoning contribution failure.
func (k Kind) Fatal() bool {
	switch k {
	case ParameterMismatch, PrimitiveFailure, SignatureInvalid:
		return true
	default:
		return false
	}
}
