package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xela07ax/autosre-console/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingSyncer считает циклы и отдает снапшот с номером цикла.
type countingSyncer struct {
	count int64
	gate  chan struct{} // если задан, Sync блокируется до закрытия
}

func (c *countingSyncer) Sync(ctx context.Context, prev domain.Snapshot) domain.Snapshot {
	n := atomic.AddInt64(&c.count, 1)
	if c.gate != nil {
		<-c.gate
	}
	return domain.Snapshot{
		Services:     []domain.Service{{ID: "svc-1"}},
		Agent:        domain.AgentStatus{PatternsLoaded: int(n)},
		LastSyncedAt: time.Now(),
	}
}

func (c *countingSyncer) syncs() int64 { return atomic.LoadInt64(&c.count) }

func newTestScheduler(agg Syncer) (*Scheduler, *Store) {
	store := NewStore()
	return NewScheduler(agg, store, NewMetrics(nil), zap.NewNop()), store
}

func TestScheduler_StartTriggersImmediateSync(t *testing.T) {
	syncer := &countingSyncer{}
	s, store := newTestScheduler(syncer)
	defer s.Stop()

	s.Start(time.Hour) // период заведомо не успеет сработать

	assert.Eventually(t, func() bool {
		return syncer.syncs() == 1 && !store.Current().Empty()
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_TicksOnSchedule(t *testing.T) {
	syncer := &countingSyncer{}
	s, _ := newTestScheduler(syncer)
	defer s.Stop()

	// 20ms-период: за ~110ms ожидаем немедленный цикл плюс ~5 тиков
	s.Start(20 * time.Millisecond)
	time.Sleep(110 * time.Millisecond)
	s.Stop()

	got := syncer.syncs()
	assert.GreaterOrEqual(t, got, int64(4))
	assert.LessOrEqual(t, got, int64(7))

	// После Stop новые циклы не стартуют
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, got, syncer.syncs())
}

func TestScheduler_StopPreventsStaleCommit(t *testing.T) {
	syncer := &countingSyncer{gate: make(chan struct{})}
	s, store := newTestScheduler(syncer)

	s.Start(time.Hour)

	// Ждем, пока первый цикл повиснет внутри Sync
	require.Eventually(t, func() bool {
		return syncer.syncs() == 1
	}, time.Second, time.Millisecond)

	stopDone := make(chan struct{})
	go func() {
		s.Stop() // ждет воркера, который завис на gate
		close(stopDone)
	}()

	// Даем Stop успеть сменить эпоху, затем отпускаем цикл
	time.Sleep(20 * time.Millisecond)
	close(syncer.gate)
	<-stopDone

	// Результат цикла, пережившего Stop, не должен был закоммититься
	assert.True(t, store.Current().Empty(), "in-flight sync must not commit after Stop")
}

func TestScheduler_ForceSyncRunsOutOfBand(t *testing.T) {
	syncer := &countingSyncer{}
	s, _ := newTestScheduler(syncer)
	defer s.Stop()

	s.Start(time.Hour)
	require.Eventually(t, func() bool { return syncer.syncs() == 1 }, time.Second, time.Millisecond)

	s.ForceSync()
	assert.Eventually(t, func() bool {
		return syncer.syncs() == 2
	}, time.Second, time.Millisecond)
}

func TestScheduler_ForceSyncAfterStopIsNoop(t *testing.T) {
	syncer := &countingSyncer{}
	s, _ := newTestScheduler(syncer)

	s.Start(time.Hour)
	require.Eventually(t, func() bool { return syncer.syncs() == 1 }, time.Second, time.Millisecond)
	s.Stop()

	s.ForceSync()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int64(1), syncer.syncs())
}

func TestScheduler_DoubleStartIsIgnored(t *testing.T) {
	syncer := &countingSyncer{}
	s, _ := newTestScheduler(syncer)
	defer s.Stop()

	s.Start(time.Hour)
	s.Start(time.Hour)

	require.Eventually(t, func() bool { return syncer.syncs() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int64(1), syncer.syncs(), "second Start must not spawn a second worker")
}

func TestScheduler_RestartAfterStop(t *testing.T) {
	syncer := &countingSyncer{}
	s, _ := newTestScheduler(syncer)

	s.Start(time.Hour)
	require.Eventually(t, func() bool { return syncer.syncs() == 1 }, time.Second, time.Millisecond)
	s.Stop()

	s.Start(time.Hour)
	defer s.Stop()
	assert.Eventually(t, func() bool { return syncer.syncs() == 2 }, time.Second, time.Millisecond)
}

func TestScheduler_OnCommitDeliversSnapshots(t *testing.T) {
	syncer := &countingSyncer{}
	s, _ := newTestScheduler(syncer)
	defer s.Stop()

	var delivered int64
	s.OnCommit(func(snap domain.Snapshot) {
		if len(snap.Services) > 0 {
			atomic.AddInt64(&delivered, 1)
		}
	})

	s.Start(time.Hour)
	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&delivered) == 1
	}, time.Second, time.Millisecond)
}
