package usage

import "time"

// Event is an immutable, append-only record of a store operation.
//
// Invariants:
// - Events are never updated or deleted.
// - Organization is required for tenancy isolation.
// - Recording is best-effort; store operations must never fail on a usage
//   error.
type Event struct {
	ID           string `json:"id"`
	Organization string `json:"organization"`

	// Op indicates the store operation the event records.
	Op Op `json:"op"`

	// Path is the artifact path as supplied by the caller.
	Path string `json:"path"`

	// Bytes is the artifact size where known; 0 for existence checks.
	Bytes int64 `json:"bytes,omitempty"`

	// ActorEmail is the authenticated caller, when the route is gated.
	ActorEmail string `json:"actor_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Op string

const (
	OpExists Op = "exists"
	OpRead   Op = "read"
	OpWrite  Op = "write"
)
