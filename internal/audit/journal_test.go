package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStorage struct {
	mu      sync.Mutex
	batches [][]Event
}

func (m *memStorage) WriteBatch(ctx context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]Event, len(events))
	copy(cp, events)
	m.batches = append(m.batches, cp)
	return nil
}

func (m *memStorage) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func (m *memStorage) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func TestJournal_FlushesWhenBatchIsFull(t *testing.T) {
	repo := &memStorage{}
	j := NewJournal(repo, 64, 3, time.Hour, zap.NewNop())
	j.Start()
	defer j.Stop()

	for i := 0; i < 3; i++ {
		j.Record(Event{TraceID: "t", Action: "restart_service", Status: StatusSuccess})
	}

	assert.Eventually(t, func() bool {
		return repo.total() == 3 && repo.batchCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestJournal_FlushesOnTicker(t *testing.T) {
	repo := &memStorage{}
	j := NewJournal(repo, 64, 100, 20*time.Millisecond, zap.NewNop())
	j.Start()
	defer j.Stop()

	j.Record(Event{Action: "simulate_incident", Status: StatusFailed})

	assert.Eventually(t, func() bool {
		return repo.total() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestJournal_StopPerformsFinalFlush(t *testing.T) {
	repo := &memStorage{}
	j := NewJournal(repo, 64, 100, time.Hour, zap.NewNop())
	j.Start()

	j.Record(Event{Action: "restart_service"})
	j.Record(Event{Action: "restart_service"})
	j.Stop()

	require.Equal(t, 2, repo.total(), "Stop must drain and flush the remainder")
}

func TestJournal_RecordAfterStopIsDropped(t *testing.T) {
	repo := &memStorage{}
	j := NewJournal(repo, 64, 100, time.Hour, zap.NewNop())
	j.Start()
	j.Stop()

	assert.NotPanics(t, func() {
		j.Record(Event{Action: "restart_service"})
	})
	assert.Zero(t, repo.total())
}

func TestJournal_StampsTimestamp(t *testing.T) {
	repo := &memStorage{}
	j := NewJournal(repo, 64, 1, time.Hour, zap.NewNop())
	j.Start()

	j.Record(Event{Action: "restart_service"})
	j.Stop()

	require.Equal(t, 1, repo.total())
	assert.False(t, repo.batches[0][0].Timestamp.IsZero())
}
