package ingest

import "github.com/J0ET0M/qubic-demo-explorer-sub003/model"

// batch accumulates tick records awaiting one atomic flush. Records are
// strictly increasing by tick; the writer enforces that before appending.
type batch struct {
	records []model.TickRecord
}

func newBatch(capacity int) *batch {
	return &batch{records: make([]model.TickRecord, 0, capacity)}
}

func (b *batch) append(r model.TickRecord) {
	b.records = append(b.records, r)
}

func (b *batch) size() int {
	return len(b.records)
}

func (b *batch) empty() bool {
	return len(b.records) == 0
}

func (b *batch) lastTick() uint64 {
	return b.records[len(b.records)-1].Tick
}

func (b *batch) reset() {
	b.records = b.records[:0]
}
