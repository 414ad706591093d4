package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/config"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/interfaces"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/metrics"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

const (
	defaultChannelCapacity        = 256
	defaultReorderWindow          = 64
	defaultMaxConsecutiveFailures = 30
)

// Manager maintains one logical subscription to the upstream tick stream,
// failing over across candidate nodes and reconnecting under capped
// exponential backoff. Records leave through a single bounded, strictly
// ordered channel which is closed when the manager terminates.
type Manager struct {
	cfg    config.NodeConfig
	dialer interfaces.NodeDialer
	out    chan model.TickRecord

	urlMu sync.RWMutex
	urls  []string

	state atomic.Int32

	forwarded      atomic.Uint64
	forwardedAny   atomic.Bool
	forwardedTotal atomic.Uint64
	reorderWindow  int
}

func NewManager(cfg config.NodeConfig, dialer interfaces.NodeDialer) *Manager {
	capacity := cfg.ChannelCapacity
	if capacity <= 0 {
		capacity = defaultChannelCapacity
	}
	window := cfg.ReorderWindow
	if window <= 0 {
		window = defaultReorderWindow
	}
	m := &Manager{
		cfg:           cfg,
		dialer:        dialer,
		out:           make(chan model.TickRecord, capacity),
		urls:          append([]string(nil), cfg.URLs...),
		reorderWindow: window,
	}
	m.state.Store(int32(model.Disconnected))
	return m
}

// Records returns the manager's output channel. Single consumer.
func (m *Manager) Records() <-chan model.TickRecord {
	return m.out
}

func (m *Manager) State() model.ConnectionState {
	return model.ConnectionState(m.state.Load())
}

func (m *Manager) setState(s model.ConnectionState) {
	m.state.Store(int32(s))
	metrics.SetConnectionState(s)
}

// SetURLs replaces the candidate list. Used by the nodes-file watcher.
func (m *Manager) SetURLs(urls []string) {
	if len(urls) == 0 {
		return
	}
	m.urlMu.Lock()
	m.urls = append([]string(nil), urls...)
	m.urlMu.Unlock()
	slog.Info("candidate node list updated", "count", len(urls))
}

func (m *Manager) candidates() []string {
	m.urlMu.RLock()
	defer m.urlMu.RUnlock()
	return append([]string(nil), m.urls...)
}

// Run blocks until cancellation, the configured end tick is reached, or an
// unrecoverable condition occurs. The output channel is closed on return.
// endTick == 0 means unbounded; with a non-zero endTick the manager stops
// after forwarding it.
func (m *Manager) Run(ctx context.Context, startTick, endTick uint64) error {
	defer close(m.out)
	defer m.setState(model.Disconnected)

	maxFailures := m.cfg.MaxConsecutiveFailures
	if maxFailures <= 0 {
		maxFailures = defaultMaxConsecutiveFailures
	}
	bo := newBackoff(m.cfg.ReconnectDelay, m.cfg.ReconnectDelayMax)

	resume := startTick
	failures := 0
	for {
		if ctx.Err() != nil {
			return nil
		}
		stream, url, err := m.dialSweep(ctx, resume)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if fatal(err) {
				slog.Error("unrecoverable subscription failure", "error", err)
				return err
			}
			failures++
			if failures >= maxFailures {
				return fmt.Errorf("giving up after %d consecutive connection failures: %w", failures, err)
			}
			delay := bo.Next()
			slog.Warn("all candidate nodes failed, backing off",
				"failures", failures, "delay", delay, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}

		m.setState(model.Subscribed)
		slog.Info("subscribed to tick stream", "url", url, "startTick", tickLabel(resume))

		before := m.forwardedTotal.Load()
		err = m.pump(ctx, stream, resume, endTick)
		_ = stream.Close()
		switch {
		case err == nil:
			// end of range or cancellation
			return nil
		case fatal(err):
			slog.Error("tick stream failed fatally", "url", url, "error", err)
			return err
		}

		m.setState(model.Reconnecting)
		metrics.IncReconnects()
		// Only forward progress clears the failure budget. A node that
		// accepts the subscription and drops the stream right away still
		// counts toward the ceiling and still backs off.
		if m.forwardedTotal.Load() > before {
			failures = 0
			bo.Reset()
		} else {
			failures++
			if failures >= maxFailures {
				return fmt.Errorf("stream dropped %d consecutive times without progress: %w", failures, err)
			}
		}
		resume = m.resumeTick(startTick)
		delay := bo.Next()
		slog.Warn("tick stream dropped, reconnecting",
			"url", url, "resumeTick", tickLabel(resume), "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// dialSweep tries every candidate in configured order and returns the first
// live stream, or the last error once the list is exhausted.
func (m *Manager) dialSweep(ctx context.Context, startTick uint64) (interfaces.TickStream, string, error) {
	var lastErr error
	for _, url := range m.candidates() {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		m.setState(model.Connecting)
		stream, err := m.dialer.DialAndSubscribe(ctx, url, startTick)
		if err == nil {
			return stream, url, nil
		}
		if fatal(err) {
			return nil, "", err
		}
		slog.Warn("candidate node unavailable", "url", url, "error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no candidate nodes configured")
	}
	return nil, "", lastErr
}

// pump forwards records from one stream in strictly increasing tick order.
// Out-of-order delivery is buffered up to the reorder window; anything the
// window cannot reconcile is fatal. Returns nil on cancellation or once
// endTick has been forwarded.
func (m *Manager) pump(ctx context.Context, stream interfaces.TickStream, startTick, endTick uint64) error {
	// When resuming mid-run the next expected tick is known. On a fresh
	// "latest" subscription the first received tick anchors the sequence.
	var expected uint64
	haveExpected := startTick != model.StartLatest
	if haveExpected {
		expected = startTick
	}

	pending := make(map[uint64]model.TickRecord)
	stop := make(chan struct{})
	defer close(stop)
	recvErr := make(chan error, 1)
	recvCh := make(chan model.TickRecord)
	go func() {
		for {
			r, err := stream.Recv()
			if err != nil {
				recvErr <- err
				return
			}
			select {
			case recvCh <- r:
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-recvErr:
			return err
		case r := <-recvCh:
			if !haveExpected {
				expected = r.Tick
				haveExpected = true
			}
			if r.Tick < expected {
				slog.Debug("dropping duplicate tick", "tick", r.Tick, "expected", expected)
				continue
			}
			if r.Tick > expected {
				pending[r.Tick] = r
				if len(pending) > m.reorderWindow {
					return fmt.Errorf("%w: expected %d, %d ticks buffered beyond window",
						ErrTickGap, expected, len(pending))
				}
				continue
			}
			done, err := m.forward(ctx, r, endTick)
			if err != nil || done {
				return err
			}
			expected++
			for {
				next, ok := pending[expected]
				if !ok {
					break
				}
				delete(pending, expected)
				done, err = m.forward(ctx, next, endTick)
				if err != nil || done {
					return err
				}
				expected++
			}
		}
	}
}

// forward pushes one record into the bounded output channel, blocking while
// it is full. Reports done=true once endTick has been delivered.
func (m *Manager) forward(ctx context.Context, r model.TickRecord, endTick uint64) (bool, error) {
	select {
	case <-ctx.Done():
		return true, nil
	case m.out <- r:
	}
	m.forwarded.Store(r.Tick)
	m.forwardedAny.Store(true)
	m.forwardedTotal.Add(1)
	if endTick != 0 && r.Tick >= endTick {
		slog.Info("end tick reached", "tick", r.Tick)
		return true, nil
	}
	return false, nil
}

// resumeTick is where a reconnect must continue from: one past the last
// record forwarded, never the original start tick.
func (m *Manager) resumeTick(startTick uint64) uint64 {
	if m.forwardedAny.Load() {
		return m.forwarded.Load() + 1
	}
	return startTick
}

func tickLabel(tick uint64) string {
	if tick == model.StartLatest {
		return "latest"
	}
	return fmt.Sprintf("%d", tick)
}
