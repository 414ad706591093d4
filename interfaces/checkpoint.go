package interfaces

import "context"

// CheckpointStore records the last durably flushed tick. Read once at
// startup, written once per successful flush. The stored value never
// decreases.
type CheckpointStore interface {
	GetLastCheckpoint(ctx context.Context) (tick uint64, ok bool, err error)
	SetCheckpoint(ctx context.Context, tick uint64) error
}
