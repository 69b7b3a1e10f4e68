package notify

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
)

// Notification — одно событие обратной связи для оператора.
type Notification struct {
	ID      string    `json:"id"`
	Outcome Outcome   `json:"outcome"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Sink — граница побочного эффекта уведомлений. Вызывается только в
// определенных точках (исход действия), никогда внутри логики выборки данных,
// поэтому в тестах легко подменяется.
type Sink interface {
	Notify(outcome Outcome, message string)
}

// Feed — fire-and-forget доставка уведомлений в дашборд. Notify никогда не
// блокирует и не паникует: при переполнении буфера событие сбрасывается
// (Load Shedding), но всегда остается в структурном логе.
type Feed struct {
	ch      chan Notification
	logger  *zap.Logger
	dropped prometheus.Counter

	// Атомарный флаг: после Stop вход закрыт
	isClosed int32
}

// NewFeed создает фид с буфером на size событий. dropped может быть nil.
func NewFeed(size int, dropped prometheus.Counter, logger *zap.Logger) *Feed {
	if size <= 0 {
		size = 128
	}
	return &Feed{
		ch:      make(chan Notification, size),
		logger:  logger.Named("notify"),
		dropped: dropped,
	}
}

func (f *Feed) Notify(outcome Outcome, message string) {
	n := Notification{
		ID:      uuid.New().String(),
		Outcome: outcome,
		Message: message,
		At:      time.Now(),
	}

	// Дублируем в лог: уведомление видно и без TUI
	if outcome == Failure {
		f.logger.Warn(message, zap.String("id", n.ID))
	} else {
		f.logger.Info(message, zap.String("id", n.ID))
	}

	if atomic.LoadInt32(&f.isClosed) == 1 {
		return
	}

	select {
	case f.ch <- n:
	default:
		// Буфер полон — сбрасываем, путь вызова важнее очереди
		if f.dropped != nil {
			f.dropped.Inc()
		}
		f.logger.Warn("notification dropped: buffer full", zap.String("id", n.ID))
	}
}

// Subscribe отдает канал для потребителя (дашборда). Канал закрывается
// в Stop после вычитки остатка.
func (f *Feed) Subscribe() <-chan Notification {
	return f.ch
}

// Stop запирает вход и закрывает канал. Подписчик дочитывает буфер до
// закрытия — накопленные уведомления не теряются.
func (f *Feed) Stop() {
	if !atomic.CompareAndSwapInt32(&f.isClosed, 0, 1) {
		return
	}
	// Пауза, чтобы начатые Notify успели проскочить до close
	time.Sleep(10 * time.Millisecond)
	close(f.ch)
}
