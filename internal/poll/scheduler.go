package poll

import (
	"context"
	"sync"
	"time"

	"github.com/xela07ax/autosre-console/internal/domain"

	"go.uber.org/zap"
)

// DefaultPeriod — период опроса, если конфиг молчит.
const DefaultPeriod = 5 * time.Second

// Syncer — что планировщику нужно от агрегатора.
type Syncer interface {
	Sync(ctx context.Context, prev domain.Snapshot) domain.Snapshot
}

// Scheduler владеет жизненным циклом периодической синхронизации:
// Stopped -> Running -> Stopped. Один воркер выполняет циклы строго
// последовательно, поэтому пересечений нет: тик, пришедший во время
// синхронизации, пропадает (канал тикера держит максимум один).
//
// Эпоха инкрементируется на каждом Start и Stop. Воркер коммитит результат,
// только если его эпоха все еще текущая — цикл, стартовавший до Stop,
// не может затереть состояние после Stop или следующего Start.
type Scheduler struct {
	agg     Syncer
	store   *Store
	metrics *Metrics
	logger  *zap.Logger

	mu       sync.Mutex
	epoch    uint64
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	trigger  chan struct{}
	onCommit func(domain.Snapshot)
}

func NewScheduler(agg Syncer, store *Store, metrics *Metrics, logger *zap.Logger) *Scheduler {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Scheduler{
		agg:     agg,
		store:   store,
		metrics: metrics,
		logger:  logger.Named("scheduler"),
	}
}

// OnCommit регистрирует подписчика на новые снапшоты (дашборд).
// Вызывать до Start; колбэк исполняется в горутине воркера и не должен
// блокировать.
func (s *Scheduler) OnCommit(fn func(domain.Snapshot)) {
	s.mu.Lock()
	s.onCommit = fn
	s.mu.Unlock()
}

// Start переводит планировщик в Running: немедленно выполняется первый цикл,
// дальше — каждый period. Повторный Start без Stop игнорируется.
func (s *Scheduler) Start(period time.Duration) {
	if period <= 0 {
		period = DefaultPeriod
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.epoch++
	epoch := s.epoch
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.trigger = make(chan struct{}, 1)
	s.running = true
	trigger, done := s.trigger, s.done
	s.mu.Unlock()

	s.logger.Info("scheduler started",
		zap.Duration("period", period),
		zap.Uint64("epoch", epoch))

	go s.run(ctx, epoch, period, trigger, done)
}

// Stop переводит планировщик в Stopped: таймер освобождается, воркер
// дожидается завершения. Начатый цикл может доработать, но его результат
// уже не будет закоммичен — эпоха сменилась.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.epoch++ // закрываем коммит ДО отмены контекста
	s.running = false
	cancel, done := s.cancel, s.done
	s.cancel, s.done, s.trigger = nil, nil, nil
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

// ForceSync запрашивает внеплановый цикл, не трогая периодическое расписание.
// Запросы коалесцируются: пока один внеплановый цикл не начался, повторные
// ForceSync складываются в тот же слот.
func (s *Scheduler) ForceSync() {
	s.mu.Lock()
	trigger := s.trigger
	s.mu.Unlock()
	if trigger == nil {
		return // Stopped — форсировать нечего
	}

	s.metrics.ForcedSyncs.Inc()
	select {
	case trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run(ctx context.Context, epoch uint64, period time.Duration, trigger <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	// Первый цикл — сразу, не дожидаясь тика
	s.syncOnce(ctx, epoch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx, epoch)
		case <-trigger:
			s.syncOnce(ctx, epoch)
		}
	}
}

func (s *Scheduler) syncOnce(ctx context.Context, epoch uint64) {
	start := time.Now()
	next := s.agg.Sync(ctx, s.store.Current())

	if !s.commit(epoch, next) {
		s.logger.Debug("stale sync result discarded", zap.Uint64("epoch", epoch))
		return
	}

	status := "ok"
	if next.SyncError != domain.SyncOK {
		status = "error"
		s.metrics.SyncErrors.WithLabelValues(string(next.SyncError)).Inc()
	} else {
		s.metrics.LastSyncTimestamp.SetToCurrentTime()
	}
	s.metrics.SyncDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// commit публикует снапшот, если эпоха воркера все еще текущая.
func (s *Scheduler) commit(epoch uint64, snap domain.Snapshot) bool {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	s.store.Publish(snap)
	cb := s.onCommit
	s.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
	return true
}
