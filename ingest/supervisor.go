package ingest

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/config"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/interfaces"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

// State is the supervisor's lifecycle position.
type State int32

const (
	ResolvingStart State = iota
	Running
	Draining
	Stopped
	Failed
)

func (s State) String() string {
	switch s {
	case ResolvingStart:
		return "resolvingStart"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// tickProducer is the supervisor's view of the node connection manager.
type tickProducer interface {
	Run(ctx context.Context, startTick, endTick uint64) error
	Records() <-chan model.TickRecord
	State() model.ConnectionState
}

// batchConsumer is the supervisor's view of the batch writer.
type batchConsumer interface {
	Consume(ctx context.Context, records <-chan model.TickRecord) error
	TicksProcessed() uint64
	Checkpoint() (uint64, bool)
}

const shutdownTimeout = 30 * time.Second

// Supervisor resolves the starting tick, runs the connection manager and
// batch writer concurrently, and guarantees a final flush on shutdown.
type Supervisor struct {
	cfg         config.IngestConfig
	producer    tickProducer
	consumer    batchConsumer
	checkpoints interfaces.CheckpointStore

	state atomic.Int32
}

func NewSupervisor(cfg config.IngestConfig, producer tickProducer, consumer batchConsumer, checkpoints interfaces.CheckpointStore) *Supervisor {
	return &Supervisor{
		cfg:         cfg,
		producer:    producer,
		consumer:    consumer,
		checkpoints: checkpoints,
	}
}

func (s *Supervisor) State() State {
	return State(s.state.Load())
}

func (s *Supervisor) setState(st State) {
	s.state.Store(int32(st))
	slog.Info("supervisor state", "state", st.String())
}

// Status returns the externally consumed observability snapshot.
func (s *Supervisor) Status() model.StatusSnapshot {
	cp, ok := s.consumer.Checkpoint()
	st := s.producer.State()
	return model.StatusSnapshot{
		State:          st,
		StateName:      st.String(),
		TicksProcessed: s.consumer.TicksProcessed(),
		Checkpoint:     cp,
		HasCheckpoint:  ok,
	}
}

// ResolveStartTick applies the start precedence: explicit start-from-latest,
// then resume-from-checkpoint, then the configured tick, then zero.
func (s *Supervisor) ResolveStartTick(ctx context.Context) (uint64, error) {
	if s.cfg.StartFromLatest {
		slog.Info("starting from latest tick")
		return model.StartLatest, nil
	}
	if s.cfg.Resume {
		cp, ok, err := s.checkpoints.GetLastCheckpoint(ctx)
		if err != nil {
			return 0, err
		}
		if ok {
			slog.Info("resuming from checkpoint", "checkpoint", cp, "startTick", cp+1)
			return cp + 1, nil
		}
		// Silent re-indexing from scratch would look like a fresh install
		// while actually being a lost checkpoint. Say so, loudly.
		slog.Warn("resume requested but no checkpoint found, falling back to configured start tick",
			"startTick", s.cfg.StartTick)
	}
	return s.cfg.StartTick, nil
}

// Run drives the pipeline to a terminal state. Returns nil on clean
// shutdown (Stopped) and the fatal error otherwise (Failed). Data already
// flushed stays durable either way.
func (s *Supervisor) Run(ctx context.Context) error {
	s.setState(ResolvingStart)
	startTick, err := s.ResolveStartTick(ctx)
	if err != nil {
		s.setState(Failed)
		return err
	}

	s.setState(Running)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	producerErr := make(chan error, 1)
	consumerErr := make(chan error, 1)
	go func() {
		producerErr <- s.producer.Run(runCtx, startTick, s.cfg.EndTick)
	}()
	go func() {
		consumerErr <- s.consumer.Consume(runCtx, s.producer.Records())
	}()

	// Either component finishing, or an external shutdown request, moves the
	// pipeline into draining. The producer closes its channel on exit, so the
	// consumer always gets its final flush opportunity.
	var firstErr error
	producerDone, consumerDone := false, false
	select {
	case <-ctx.Done():
	case firstErr = <-producerErr:
		producerDone = true
	case firstErr = <-consumerErr:
		consumerDone = true
	}

	s.setState(Draining)
	cancel()

	timeout := time.After(shutdownTimeout)
	for !producerDone || !consumerDone {
		select {
		case err := <-producerErr:
			producerDone = true
			if firstErr == nil {
				firstErr = err
			}
		case err := <-consumerErr:
			consumerDone = true
			if firstErr == nil {
				firstErr = err
			}
		case <-timeout:
			slog.Error("shutdown timeout exceeded while draining")
			if firstErr == nil {
				firstErr = context.DeadlineExceeded
			}
			producerDone, consumerDone = true, true
		}
	}

	if firstErr != nil {
		s.setState(Failed)
		slog.Error("ingestion halted", "error", firstErr)
		return firstErr
	}
	s.setState(Stopped)
	slog.Info("ingestion stopped cleanly",
		"ticksProcessed", s.consumer.TicksProcessed())
	return nil
}
