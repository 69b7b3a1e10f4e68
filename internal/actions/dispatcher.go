package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/xela07ax/autosre-console/internal/audit"
	"github.com/xela07ax/autosre-console/internal/notify"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Backend — мутирующая часть API бэкенда.
type Backend interface {
	RestartService(ctx context.Context, serviceID string) error
	SimulateIncident(ctx context.Context) error
}

// Resyncer просит планировщика немедленно пересинхронизироваться.
type Resyncer interface {
	ForceSync()
}

// Dispatcher исполняет действия оператора и решает, когда форсировать
// ресинхронизацию и какую обратную связь отдать.
//
// Дедупликации и подавления in-flight здесь нет сознательно: два быстрых
// клика — два вызова бэкенда. UI волен дизейблить кнопки, диспетчер — нет.
// Автоматических ретраев тоже нет: неудачное действие остается неудачным,
// пока оператор не повторит его сам.
type Dispatcher struct {
	api     Backend
	sched   Resyncer
	sink    notify.Sink
	journal audit.Recorder // nil допустим — журнал опционален
	actions *prometheus.CounterVec
	logger  *zap.Logger
}

func NewDispatcher(
	api Backend,
	sched Resyncer,
	sink notify.Sink,
	journal audit.Recorder,
	actions *prometheus.CounterVec,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		api:     api,
		sched:   sched,
		sink:    sink,
		journal: journal,
		actions: actions,
		logger:  logger.Named("dispatcher"),
	}
}

// RestartService просит бэкенд перезапустить сервис. Успех: ровно один
// ForceSync плюс success-уведомление. Отказ: failure-уведомление и НИКАКОЙ
// ресинхронизации — состояние считается неизменным.
func (d *Dispatcher) RestartService(ctx context.Context, serviceID string) error {
	traceID := uuid.New().String()
	start := time.Now()

	err := d.api.RestartService(ctx, serviceID)
	d.finish(traceID, "restart_service", serviceID, start, err,
		fmt.Sprintf("Restart requested for %s", serviceID),
		fmt.Sprintf("Restart of %s failed", serviceID))
	return err
}

// SimulateIncident инжектирует синтетический инцидент (демо/учения).
func (d *Dispatcher) SimulateIncident(ctx context.Context) error {
	traceID := uuid.New().String()
	start := time.Now()

	err := d.api.SimulateIncident(ctx)
	d.finish(traceID, "simulate_incident", "", start, err,
		"Synthetic incident injected",
		"Incident simulation failed")
	return err
}

// finish — единая точка завершения действия: журнал, метрики, уведомление,
// ресинхронизация. Порядок при успехе: сначала ForceSync, затем уведомление —
// к моменту, когда оператор прочитал сообщение, свежие данные уже едут.
func (d *Dispatcher) finish(traceID, action, target string, start time.Time, err error, okMsg, failMsg string) {
	event := audit.Event{
		ID:         uuid.New().String(),
		TraceID:    traceID,
		Action:     action,
		Target:     target,
		DurationMs: time.Since(start).Milliseconds(),
		Timestamp:  time.Now(),
	}

	if err != nil {
		event.Status = audit.StatusFailed
		event.Error = err.Error()
		d.record(event)
		if d.actions != nil {
			d.actions.WithLabelValues(action, "failure").Inc()
		}

		d.logger.Error("action failed",
			zap.String("action", action),
			zap.String("target", target),
			zap.String("trace_id", traceID),
			zap.Error(err))
		d.sink.Notify(notify.Failure, fmt.Sprintf("%s: %v", failMsg, err))
		return
	}

	event.Status = audit.StatusSuccess
	d.record(event)
	if d.actions != nil {
		d.actions.WithLabelValues(action, "success").Inc()
	}

	d.logger.Info("action succeeded",
		zap.String("action", action),
		zap.String("target", target),
		zap.String("trace_id", traceID))

	d.sched.ForceSync()
	d.sink.Notify(notify.Success, okMsg)
}

func (d *Dispatcher) record(event audit.Event) {
	if d.journal == nil {
		return
	}
	d.journal.Record(event)
}
