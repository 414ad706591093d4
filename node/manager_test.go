package node

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/config"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/interfaces"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

var errConnReset = errors.New("connection reset")

// scriptedStream replays a fixed record sequence and then fails with errAfter.
type scriptedStream struct {
	records  []model.TickRecord
	errAfter error
	i        int
	closed   chan struct{}
	once     sync.Once
}

func newScriptedStream(errAfter error, ticks ...uint64) *scriptedStream {
	s := &scriptedStream{errAfter: errAfter, closed: make(chan struct{})}
	for _, n := range ticks {
		s.records = append(s.records, model.TickRecord{Tick: n})
	}
	return s
}

func (s *scriptedStream) Recv() (model.TickRecord, error) {
	if s.i < len(s.records) {
		r := s.records[s.i]
		s.i++
		return r, nil
	}
	if s.errAfter != nil {
		return model.TickRecord{}, s.errAfter
	}
	// block until closed, like a quiet live connection
	<-s.closed
	return model.TickRecord{}, errConnReset
}

func (s *scriptedStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// scriptedDialer hands out streams per call and records every dial.
type scriptedDialer struct {
	mu      sync.Mutex
	scripts []func(url string, startTick uint64) (interfaces.TickStream, error)
	dials   []string
	starts  []uint64
	times   []time.Time
}

func (d *scriptedDialer) DialAndSubscribe(_ context.Context, url string, startTick uint64) (interfaces.TickStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials = append(d.dials, url)
	d.starts = append(d.starts, startTick)
	d.times = append(d.times, time.Now())
	if len(d.scripts) == 0 {
		return nil, errConnReset
	}
	next := d.scripts[0]
	d.scripts = d.scripts[1:]
	return next(url, startTick)
}

func (d *scriptedDialer) dialed() ([]string, []uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dials...), append([]uint64(nil), d.starts...)
}

func (d *scriptedDialer) dialTimes() []time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Time(nil), d.times...)
}

func managerConfig(urls ...string) config.NodeConfig {
	return config.NodeConfig{
		URLs:                   urls,
		ReconnectDelay:         time.Millisecond,
		ReconnectDelayMax:      2 * time.Millisecond,
		MaxConsecutiveFailures: 1,
		ChannelCapacity:        128,
		ReorderWindow:          8,
	}
}

func collect(t *testing.T, records <-chan model.TickRecord) []uint64 {
	t.Helper()
	var got []uint64
	for r := range records {
		got = append(got, r.Tick)
	}
	return got
}

func TestManager_ReordersOutOfOrderDelivery(t *testing.T) {
	dialer := &scriptedDialer{scripts: []func(string, uint64) (interfaces.TickStream, error){
		func(string, uint64) (interfaces.TickStream, error) {
			return newScriptedStream(errConnReset, 0, 2, 1, 3), nil
		},
	}}
	m := NewManager(managerConfig("ws://a"), dialer)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), 0, 3) }()

	assert.Equal(t, []uint64{0, 1, 2, 3}, collect(t, m.Records()))
	require.NoError(t, <-done)
}

func TestManager_ResumesFromLastForwardedTick(t *testing.T) {
	dialer := &scriptedDialer{scripts: []func(string, uint64) (interfaces.TickStream, error){
		func(string, uint64) (interfaces.TickStream, error) {
			return newScriptedStream(errConnReset, 5, 6), nil
		},
		func(_ string, startTick uint64) (interfaces.TickStream, error) {
			return newScriptedStream(errConnReset, startTick), nil
		},
	}}
	m := NewManager(managerConfig("ws://a"), dialer)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), 5, 7) }()

	assert.Equal(t, []uint64{5, 6, 7}, collect(t, m.Records()))
	require.NoError(t, <-done)

	_, starts := dialer.dialed()
	require.Len(t, starts, 2)
	assert.Equal(t, uint64(5), starts[0])
	// mid-stream reconnect must continue after the last forwarded record
	assert.Equal(t, uint64(7), starts[1])
}

func TestManager_FailsOverInConfiguredOrder(t *testing.T) {
	dialer := &scriptedDialer{scripts: []func(string, uint64) (interfaces.TickStream, error){
		func(string, uint64) (interfaces.TickStream, error) {
			return nil, errors.New("connection refused")
		},
		func(string, uint64) (interfaces.TickStream, error) {
			return newScriptedStream(errConnReset, 1, 2), nil
		},
	}}
	m := NewManager(managerConfig("ws://a", "ws://b"), dialer)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), 1, 2) }()

	assert.Equal(t, []uint64{1, 2}, collect(t, m.Records()))
	require.NoError(t, <-done)

	dials, _ := dialer.dialed()
	assert.Equal(t, []string{"ws://a", "ws://b"}, dials)
}

func TestManager_SweepExhaustionIsFatal(t *testing.T) {
	dialer := &scriptedDialer{} // every dial fails
	m := NewManager(managerConfig("ws://a", "ws://b"), dialer)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), 0, 0) }()

	assert.Empty(t, collect(t, m.Records()))
	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, errConnReset)
}

func TestManager_RepeatedStreamDropsHitCeiling(t *testing.T) {
	cfg := managerConfig("ws://a")
	cfg.ReconnectDelay = 15 * time.Millisecond
	cfg.ReconnectDelayMax = 60 * time.Millisecond
	cfg.MaxConsecutiveFailures = 3

	// every connection is accepted and then dropped before delivering a tick
	drop := func(string, uint64) (interfaces.TickStream, error) {
		return newScriptedStream(errConnReset), nil
	}
	dialer := &scriptedDialer{scripts: []func(string, uint64) (interfaces.TickStream, error){drop, drop, drop}}
	m := NewManager(cfg, dialer)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), 0, 0) }()

	assert.Empty(t, collect(t, m.Records()))
	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, errConnReset)

	times := dialer.dialTimes()
	require.Len(t, times, 3)
	// no-progress drops count toward the ceiling and back off exponentially
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), 15*time.Millisecond)
	assert.GreaterOrEqual(t, times[2].Sub(times[1]), 30*time.Millisecond)
}

func TestManager_FatalOnUnreconcilableGap(t *testing.T) {
	cfg := managerConfig("ws://a")
	cfg.ReorderWindow = 2
	dialer := &scriptedDialer{scripts: []func(string, uint64) (interfaces.TickStream, error){
		func(string, uint64) (interfaces.TickStream, error) {
			return newScriptedStream(nil, 0, 5, 6, 7), nil
		},
	}}
	m := NewManager(cfg, dialer)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), 0, 0) }()

	assert.Equal(t, []uint64{0}, collect(t, m.Records()))
	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTickGap)
}

func TestManager_FatalOnUnauthorized(t *testing.T) {
	dialer := &scriptedDialer{scripts: []func(string, uint64) (interfaces.TickStream, error){
		func(string, uint64) (interfaces.TickStream, error) {
			return nil, ErrUnauthorized
		},
	}}
	m := NewManager(managerConfig("ws://a", "ws://b"), dialer)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), 0, 0) }()

	assert.Empty(t, collect(t, m.Records()))
	err := <-done
	assert.ErrorIs(t, err, ErrUnauthorized)

	dials, _ := dialer.dialed()
	// no failover after an auth rejection
	assert.Equal(t, []string{"ws://a"}, dials)
}

func TestManager_CancelClosesChannel(t *testing.T) {
	dialer := &scriptedDialer{scripts: []func(string, uint64) (interfaces.TickStream, error){
		func(string, uint64) (interfaces.TickStream, error) {
			return newScriptedStream(nil, 0, 1), nil
		},
	}}
	m := NewManager(managerConfig("ws://a"), dialer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 0, 0) }()

	var got []uint64
	for r := range m.Records() {
		got = append(got, r.Tick)
		if len(got) == 2 {
			cancel()
		}
	}
	// channel closed promptly after cancellation
	require.NoError(t, <-done)
	assert.Equal(t, []uint64{0, 1}, got)
	assert.Equal(t, model.Disconnected, m.State())
}

func TestManager_SetURLsReplacesCandidates(t *testing.T) {
	m := NewManager(managerConfig("ws://a"), &scriptedDialer{})
	m.SetURLs([]string{"ws://c", "ws://d"})
	assert.Equal(t, []string{"ws://c", "ws://d"}, m.candidates())
	m.SetURLs(nil)
	assert.Equal(t, []string{"ws://c", "ws://d"}, m.candidates())
}
