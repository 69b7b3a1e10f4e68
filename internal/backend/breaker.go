package backend

import (
	"context"
	"errors"
	"time"

	"github.com/xela07ax/autosre-console/internal/domain"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings — пороги предохранителя, приходят из конфига.
type BreakerSettings struct {
	MaxRequests         uint32        // пробных запросов в half-open
	Interval            time.Duration // окно сброса счетчиков
	Timeout             time.Duration // через сколько открытый CB пробует закрыться
	ConsecutiveFailures uint32        // сколько отказов подряд выбивает CB
}

// Breaker оборачивает клиента бэкенда в Circuit Breaker. Важно: это НЕ ретраи —
// ни один вызов не выполняется повторно. Предохранитель лишь переводит отказы
// в fail-fast, когда бэкенд лежит, чтобы каждый тик не ждал полный таймаут.
// Открытое состояние для вызывающих неотличимо от сетевого отказа.
type Breaker struct {
	next   API
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

func NewBreaker(next API, st BreakerSettings, logger *zap.Logger) *Breaker {
	log := logger.Named("breaker")

	failures := st.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "autosre-backend",
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Breaker{next: next, cb: cb, logger: log}
}

func (b *Breaker) ListServices(ctx context.Context) ([]domain.Service, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.ListServices(ctx)
	})
	if err != nil {
		return nil, b.mapErr("list_services", err)
	}
	return res.([]domain.Service), nil
}

func (b *Breaker) ListActiveIncidents(ctx context.Context) ([]domain.Incident, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.ListActiveIncidents(ctx)
	})
	if err != nil {
		return nil, b.mapErr("list_incidents", err)
	}
	return res.([]domain.Incident), nil
}

func (b *Breaker) AgentStatus(ctx context.Context) (domain.AgentStatus, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.AgentStatus(ctx)
	})
	if err != nil {
		return domain.AgentStatus{}, b.mapErr("agent_status", err)
	}
	return res.(domain.AgentStatus), nil
}

func (b *Breaker) RestartService(ctx context.Context, serviceID string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.RestartService(ctx, serviceID)
	})
	return b.mapErr("restart_service", err)
}

func (b *Breaker) SimulateIncident(ctx context.Context) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.SimulateIncident(ctx)
	})
	return b.mapErr("simulate_incident", err)
}

// mapErr переводит внутренние ошибки gobreaker в таксономию клиента.
// Для вызывающих открытый предохранитель — тот же сетевой отказ.
func (b *Breaker) mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &NetworkError{Op: op, Cause: err}
	}
	return err
}
