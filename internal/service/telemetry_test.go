package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/freeeve/pacgrid/internal/model"
)

type mockBroadcaster struct {
	mu    sync.Mutex
	ticks []int
	block chan struct{}
}

func (m *mockBroadcaster) BroadcastTick(rec *model.TickRecord) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, rec.Tick)
}

type mockRecorder struct {
	mu    sync.Mutex
	ticks map[int]*model.TickRecord
	fail  bool
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{ticks: make(map[int]*model.TickRecord)}
}

func (m *mockRecorder) RecordTick(_ context.Context, rec *model.TickRecord) error {
	if m.fail {
		return errors.New("db down")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks[rec.Tick] = rec
	return nil
}

func (m *mockRecorder) ListTicks(_ context.Context, matchID string) ([]model.TickRecord, error) {
	return nil, nil
}

func (m *mockRecorder) Summary(_ context.Context, matchID string) (*model.MatchSummary, error) {
	return nil, nil
}

func TestTelemetryDeliversInOrder(t *testing.T) {
	b := &mockBroadcaster{}
	rec := newMockRecorder()
	tel := NewTelemetry(16, b, rec)
	tel.Start(context.Background())

	for i := 1; i <= 5; i++ {
		if !tel.Publish(&model.TickRecord{MatchID: "m", Tick: i}) {
			t.Fatalf("tick %d dropped", i)
		}
	}
	tel.Close()

	if len(b.ticks) != 5 {
		t.Fatalf("expected 5 broadcasts, got %d", len(b.ticks))
	}
	for i, tick := range b.ticks {
		if tick != i+1 {
			t.Errorf("broadcast %d: expected tick %d, got %d", i, i+1, tick)
		}
	}
	if len(rec.ticks) != 5 {
		t.Errorf("expected 5 recorded ticks, got %d", len(rec.ticks))
	}
	if tel.Processed() != 5 || tel.Dropped() != 0 {
		t.Errorf("expected 5 processed, 0 dropped; got %d, %d", tel.Processed(), tel.Dropped())
	}
}

func TestTelemetryDropsWhenFull(t *testing.T) {
	b := &mockBroadcaster{block: make(chan struct{})}
	tel := NewTelemetry(1, b, nil)
	tel.Start(context.Background())

	// The first record is picked up and blocks in the broadcaster; the second
	// fills the queue; anything after that is dropped.
	tel.Publish(&model.TickRecord{Tick: 1})
	accepted := 1
	for i := 2; i <= 10; i++ {
		if tel.Publish(&model.TickRecord{Tick: i}) {
			accepted++
		}
	}
	if tel.Dropped() == 0 {
		t.Error("expected some records dropped")
	}
	if int64(accepted)+tel.Dropped() != 10 {
		t.Errorf("accepted %d + dropped %d != 10", accepted, tel.Dropped())
	}
	close(b.block)
	tel.Close()
	if tel.Processed() != int64(accepted) {
		t.Errorf("expected %d processed, got %d", accepted, tel.Processed())
	}
}

func TestTelemetryRecorderErrorsAreNotFatal(t *testing.T) {
	b := &mockBroadcaster{}
	rec := newMockRecorder()
	rec.fail = true
	tel := NewTelemetry(4, b, rec)
	tel.Start(context.Background())
	tel.Publish(&model.TickRecord{Tick: 1})
	tel.Publish(&model.TickRecord{Tick: 2})
	tel.Close()

	if len(b.ticks) != 2 {
		t.Errorf("expected broadcasts despite recorder errors, got %d", len(b.ticks))
	}
}

func TestTelemetryStopsOnCancel(t *testing.T) {
	tel := NewTelemetry(4, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	tel.Start(ctx)
	cancel()
	tel.Close()
	tel.Close()
}
