package audit

/*
Журнал действий оператора. Запись не должна тормозить путь действия:
события уходят в буферизованный канал, воркер копит пачку и пишет ее в
хранилище по таймеру или при достижении лимита. При остановке вход
запирается, канал закрывается и воркер дописывает остаток (Drain Pattern) —
перезапуск консоли не теряет записей.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Storage определяет, куда физически уходят записи журнала.
type Storage interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []Event) error
}

// Recorder — то, что нужно диспетчеру действий. Nil-журнал допустим:
// диспетчер обязан переживать отсутствие персистентности.
type Recorder interface {
	Record(event Event)
}

type Journal struct {
	ch      chan Event
	repo    Storage
	logger  *zap.Logger
	wg      sync.WaitGroup
	batch   int
	flushIv time.Duration

	isClosed int32
}

func NewJournal(repo Storage, bufferSize, batchSize int, flushInterval time.Duration, logger *zap.Logger) *Journal {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &Journal{
		ch:      make(chan Event, bufferSize),
		repo:    repo,
		logger:  logger.Named("audit"),
		batch:   batchSize,
		flushIv: flushInterval,
	}
}

func (j *Journal) Start() {
	j.wg.Add(1)
	go j.worker()
}

// Stop запирает вход и ждет, пока воркер допишет остаток буфера.
func (j *Journal) Stop() {
	if !atomic.CompareAndSwapInt32(&j.isClosed, 0, 1) {
		return
	}
	// Крошечная пауза, чтобы начатые Record успели проскочить
	time.Sleep(10 * time.Millisecond)
	close(j.ch)
	j.wg.Wait()
	j.logger.Info("audit journal stopped")
}

func (j *Journal) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if atomic.LoadInt32(&j.isClosed) == 1 {
		j.logger.Warn("audit event dropped: journal is stopping", zap.String("id", event.ID))
		return
	}

	// Load Shedding: путь действия важнее полноты журнала
	select {
	case j.ch <- event:
	default:
		j.logger.Error("audit_buffer_overflow",
			zap.String("trace_id", event.TraceID),
			zap.String("action", event.Action))
	}
}

func (j *Journal) worker() {
	defer j.wg.Done()

	batch := make([]Event, 0, j.batch)
	ticker := time.NewTicker(j.flushIv)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: основной контекст к этому моменту может быть закрыт
		if err := j.repo.WriteBatch(context.Background(), batch); err != nil {
			j.logger.Error("audit flush failed", zap.Int("events", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-j.ch:
			if !ok {
				// Канал закрыт в Stop: остаток уже вычитан, финальный сброс
				flush()
				return
			}
			batch = append(batch, event)
			if len(batch) >= j.batch {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
