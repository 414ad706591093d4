package interfaces

import (
	"context"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

// TickStream is a live subscription to the upstream tick feed. Recv blocks
// until the next record, a transport error, or stream close.
type TickStream interface {
	Recv() (model.TickRecord, error)
	Close() error
}

// NodeDialer establishes a subscription against a single candidate node.
// startTick follows model.StartLatest sentinel semantics.
type NodeDialer interface {
	DialAndSubscribe(ctx context.Context, url string, startTick uint64) (TickStream, error)
}
