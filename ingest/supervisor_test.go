package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/config"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/mocks"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

// stubProducer plays the connection manager's role: it emits a fixed set of
// records, closes its channel and returns.
type stubProducer struct {
	records   chan model.TickRecord
	emit      []model.TickRecord
	runErr    error
	gotStart  uint64
	gotEnd    uint64
	runCalled chan struct{}
}

func newStubProducer(emit ...model.TickRecord) *stubProducer {
	return &stubProducer{
		records:   make(chan model.TickRecord, len(emit)+1),
		emit:      emit,
		runCalled: make(chan struct{}),
	}
}

func (p *stubProducer) Run(ctx context.Context, startTick, endTick uint64) error {
	p.gotStart = startTick
	p.gotEnd = endTick
	close(p.runCalled)
	defer close(p.records)
	for _, r := range p.emit {
		select {
		case <-ctx.Done():
			return nil
		case p.records <- r:
		}
	}
	return p.runErr
}

func (p *stubProducer) Records() <-chan model.TickRecord { return p.records }

func (p *stubProducer) State() model.ConnectionState { return model.Subscribed }

func TestSupervisor_ResumePrecedence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cps := mocks.NewMockCheckpointStore(ctrl)
	cps.EXPECT().GetLastCheckpoint(gomock.Any()).Return(uint64(100), true, nil).Times(1)

	cfg := config.IngestConfig{Resume: true, StartTick: 0}
	s := NewSupervisor(cfg, newStubProducer(), nil, cps)

	start, err := s.ResolveStartTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(101), start)
}

func TestSupervisor_StartFromLatestWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// checkpoint store must not even be consulted
	cps := mocks.NewMockCheckpointStore(ctrl)

	cfg := config.IngestConfig{StartFromLatest: true, Resume: true, StartTick: 42}
	s := NewSupervisor(cfg, newStubProducer(), nil, cps)

	start, err := s.ResolveStartTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StartLatest, start)
}

func TestSupervisor_ResumeFallbackWithoutCheckpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cps := mocks.NewMockCheckpointStore(ctrl)
	cps.EXPECT().GetLastCheckpoint(gomock.Any()).Return(uint64(0), false, nil).Times(1)

	cfg := config.IngestConfig{Resume: true, StartTick: 5}
	s := NewSupervisor(cfg, newStubProducer(), nil, cps)

	start, err := s.ResolveStartTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), start)
}

func TestSupervisor_RunFlushesAndStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockTickSink(ctrl)
	cps := mocks.NewMockCheckpointStore(ctrl)

	cps.EXPECT().GetLastCheckpoint(gomock.Any()).Return(uint64(99), true, nil).Times(1)
	sink.EXPECT().InsertTickBatch(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	cps.EXPECT().SetCheckpoint(gomock.Any(), uint64(102)).Return(nil).Times(1)

	producer := newStubProducer(tick(100, true), tick(101, true), tick(102, true))
	writer := NewWriter(config.IngestConfig{BatchSize: 50, FlushInterval: time.Hour}, sink, cps)
	s := NewSupervisor(config.IngestConfig{Resume: true}, producer, writer, cps)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, uint64(100), producer.gotStart)
	assert.Equal(t, uint64(3), writer.TicksProcessed())

	status := s.Status()
	assert.Equal(t, uint64(3), status.TicksProcessed)
	assert.Equal(t, uint64(102), status.Checkpoint)
	assert.True(t, status.HasCheckpoint)
}

func TestSupervisor_FatalProducerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockTickSink(ctrl)
	cps := mocks.NewMockCheckpointStore(ctrl)

	producer := newStubProducer()
	producer.runErr = errors.New("subscription unauthorized")
	writer := NewWriter(config.IngestConfig{BatchSize: 50, FlushInterval: time.Hour}, sink, cps)
	s := NewSupervisor(config.IngestConfig{StartTick: 7}, producer, writer, cps)

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, Failed, s.State())
	assert.Equal(t, uint64(7), producer.gotStart)
}

func TestSupervisor_ShutdownDrains(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockTickSink(ctrl)
	cps := mocks.NewMockCheckpointStore(ctrl)

	// partial batch is flushed during draining
	sink.EXPECT().InsertTickBatch(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	cps.EXPECT().SetCheckpoint(gomock.Any(), uint64(1)).Return(nil).Times(1)

	producer := newStubProducer(tick(0, false), tick(1, false))
	writer := NewWriter(config.IngestConfig{BatchSize: 50, FlushInterval: time.Hour}, sink, cps)
	s := NewSupervisor(config.IngestConfig{StartTick: 0}, producer, writer, cps)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	<-producer.runCalled
	// give the writer a moment to pull both records, then request shutdown
	require.Eventually(t, func() bool {
		return len(producer.records) == 0
	}, time.Second, time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, uint64(2), writer.TicksProcessed())
}
