package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xela07ax/autosre-console/internal/actions"
	"github.com/xela07ax/autosre-console/internal/audit"
	"github.com/xela07ax/autosre-console/internal/backend"
	"github.com/xela07ax/autosre-console/internal/console/server"
	"github.com/xela07ax/autosre-console/internal/console/ui"
	"github.com/xela07ax/autosre-console/internal/infra"
	"github.com/xela07ax/autosre-console/internal/notify"
	"github.com/xela07ax/autosre-console/internal/poll"
	"github.com/xela07ax/autosre-console/internal/repository/postgres"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.UI.Enabled && cfg.Logger.File == "" {
		// TUI и stderr несовместимы: любое сообщение ломает отрисовку
		cfg.Logger.File = "console.log"
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	// 2. Метрики
	reg := prometheus.NewRegistry()
	metrics := poll.NewMetrics(reg)

	// 3. Клиент бэкенда, обернутый в предохранитель (fail-fast, без ретраев)
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
	api := backend.NewBreaker(client, backend.BreakerSettings{
		MaxRequests:         cfg.Backend.CBMaxRequests,
		Interval:            cfg.Backend.CBInterval,
		Timeout:             cfg.Backend.CBTimeout,
		ConsecutiveFailures: cfg.Backend.CBConsecutiveFailures,
	}, logger)

	// 4. Ядро синхронизации: store -> aggregator -> scheduler
	store := poll.NewStore()
	agg := poll.NewAggregator(api, logger)
	sched := poll.NewScheduler(agg, store, metrics, logger)

	// 5. Фид уведомлений оператора
	feed := notify.NewFeed(cfg.UI.NotifyBuffer, metrics.NotificationsDropped, logger)

	// 6. Журнал действий (опционален: без DSN работаем без персистентности)
	var journal *audit.Journal
	if cfg.Audit.DSN != "" {
		repo, err := postgres.NewActionRepo(cfg.Audit.DSN)
		if err != nil {
			logger.Fatal("audit repo init failed", zap.Error(err))
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := repo.Ping(pingCtx); err != nil {
			logger.Fatal("audit database unreachable", zap.Error(err))
		}
		cancel()
		defer repo.Close()

		journal = audit.NewJournal(repo, cfg.Audit.BufferSize, cfg.Audit.BatchSize, cfg.Audit.FlushInterval, logger)
		journal.Start()
	}

	// 7. Диспетчер действий
	var recorder audit.Recorder
	if journal != nil {
		recorder = journal
	}
	dispatcher := actions.NewDispatcher(api, sched, feed, recorder, metrics.Actions, logger)

	// 8. HTTP-поверхность: /health, /api/v1/view, /metrics
	consoleAPI := server.New(store, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      consoleAPI,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("console API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// 9. Дашборд подписывается ДО старта опроса, чтобы не пропустить
	// первый снапшот
	if cfg.UI.Enabled {
		dash := ui.New(dispatcher, logger)
		sched.OnCommit(dash.ApplySnapshot)
		go func() {
			for n := range feed.Subscribe() {
				dash.AppendNotification(n)
			}
		}()
		go func() {
			<-stop
			dash.Stop()
		}()

		sched.Start(cfg.Poll.Interval)

		// Блокируемся в event loop терминала: выход — 'q' или сигнал
		if err := dash.Run(); err != nil {
			logger.Error("dashboard terminated with error", zap.Error(err))
		}
	} else {
		// Headless-режим: срез состояния доступен только по HTTP
		sched.Start(cfg.Poll.Interval)
		<-stop
	}

	// 10. Graceful Shutdown
	logger.Info("console stopping...")
	sched.Stop()
	feed.Stop()
	if journal != nil {
		journal.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("console exited properly")
}
