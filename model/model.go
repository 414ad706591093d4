package model

import "time"

// StartLatest is the sentinel start tick meaning "subscribe from the current
// network head" instead of a concrete tick number.
const StartLatest = ^uint64(0)

// ConnectionState is owned by the node connection manager. Other components
// only read snapshots of it.
type ConnectionState int32

const (
	Disconnected ConnectionState = iota
	Connecting
	Subscribed
	Reconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Subscribed:
		return "subscribed"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Transaction is one transfer included in a tick.
type Transaction struct {
	Hash      string `json:"hash"`
	Source    string `json:"source"`
	Dest      string `json:"dest"`
	Amount    int64  `json:"amount"`
	InputType uint16 `json:"inputType"`
	InputData []byte `json:"inputData,omitempty"`
}

// EventLog is one contract/log entry emitted during a tick.
type EventLog struct {
	TxHash string `json:"txHash,omitempty"`
	Type   uint32 `json:"type"`
	Data   []byte `json:"data,omitempty"`
}

// TickRecord is one unit of upstream data. Immutable once produced by the
// connection manager; consumed exactly once by the batch writer.
type TickRecord struct {
	Tick         uint64        `json:"tick"`
	Epoch        uint32        `json:"epoch"`
	Timestamp    time.Time     `json:"timestamp"`
	Transactions []Transaction `json:"transactions,omitempty"`
	Events       []EventLog    `json:"events,omitempty"`

	// IsCatchUp marks records received while still behind the network head.
	IsCatchUp bool `json:"isCatchUp"`
}

// StatusSnapshot is the read-only view of ingestion progress exposed to
// logging and health-check layers.
type StatusSnapshot struct {
	State          ConnectionState `json:"-"`
	StateName      string          `json:"state"`
	TicksProcessed uint64          `json:"ticksProcessed"`
	Checkpoint     uint64          `json:"checkpoint"`
	HasCheckpoint  bool            `json:"hasCheckpoint"`
}
