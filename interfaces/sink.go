package interfaces

import (
	"context"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

// TickSink persists a batch of tick records. A call is atomic: either the
// whole batch becomes visible or none of it. Re-inserting already persisted
// ticks must be a no-op, because the last batch is replayed after a crash
// between flush and checkpoint write.
type TickSink interface {
	InsertTickBatch(ctx context.Context, records []model.TickRecord) error
	Close()
}
