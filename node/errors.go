package node

import "errors"

var (
	// ErrUnauthorized is returned when a node rejects the subscription
	// credentials. Not retried.
	ErrUnauthorized = errors.New("node: subscription unauthorized")

	// ErrProtocol covers malformed frames and version mismatches. Skipping
	// a malformed frame would break tick ordering, so it is fatal.
	ErrProtocol = errors.New("node: protocol error")

	// ErrTickGap is returned when the stream delivers ticks the manager
	// cannot reorder into a contiguous sequence.
	ErrTickGap = errors.New("node: unreconcilable tick gap")
)

// fatal reports whether an error must terminate the manager instead of
// triggering failover.
func fatal(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrProtocol) || errors.Is(err, ErrTickGap)
}
