package poll

import (
	"context"
	"errors"
	"time"

	"github.com/xela07ax/autosre-console/internal/backend"
	"github.com/xela07ax/autosre-console/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reader — что агрегатору нужно от клиента бэкенда (только чтения).
type Reader interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	ListActiveIncidents(ctx context.Context) ([]domain.Incident, error)
	AgentStatus(ctx context.Context) (domain.AgentStatus, error)
}

// Aggregator собирает снапшот из трех независимых источников.
// Политика частичного сбоя — строгая: либо все три чтения успешны и снапшот
// заменяется целиком, либо остается предыдущий с маркером SyncError.
// Склейка старых сервисов с новыми инцидентами недопустима.
type Aggregator struct {
	api    Reader
	logger *zap.Logger
}

func NewAggregator(api Reader, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		api:    api,
		logger: logger.Named("aggregator"),
	}
}

// Sync выполняет один цикл синхронизации. Три чтения идут параллельно:
// потолок задержки — самый медленный источник, а не их сумма. Первый же
// отказ отменяет остальные чтения через контекст группы.
func (a *Aggregator) Sync(ctx context.Context, prev domain.Snapshot) domain.Snapshot {
	var (
		services  []domain.Service
		incidents []domain.Incident
		agent     domain.AgentStatus
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		services, err = a.api.ListServices(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		incidents, err = a.api.ListActiveIncidents(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		agent, err = a.api.AgentStatus(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		kind := classify(err)
		a.logger.Warn("sync failed, keeping previous snapshot",
			zap.String("kind", string(kind)),
			zap.Error(err))

		// Предыдущие данные не трогаем, ставим только маркер сбоя
		next := prev
		next.SyncError = kind
		return next
	}

	return domain.Snapshot{
		Services:     services,
		Incidents:    incidents,
		Agent:        agent,
		LastSyncedAt: time.Now(),
	}
}

// classify сводит ошибку клиента к виду сбоя снапшота.
func classify(err error) domain.SyncErrorKind {
	var perr *backend.ProtocolError
	if errors.As(err, &perr) {
		return domain.SyncProtocol
	}
	// Всё остальное (отказ сети, таймаут, отмена контекста) — network
	return domain.SyncNetwork
}
