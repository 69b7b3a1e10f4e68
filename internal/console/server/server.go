package server

import (
	"encoding/json"
	"net/http"

	"github.com/xela07ax/autosre-console/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SnapshotSource — читатель текущего снапшота (store планировщика).
type SnapshotSource interface {
	Current() domain.Snapshot
}

// ConsoleServer — локальная HTTP-поверхность консоли: liveness для внешнего
// диагностического скрипта, JSON-срез текущего состояния и метрики.
// Поднимается на :3000 — порту, который diag-скрипт считает «фронтендом».
type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger

	store   SnapshotSource
	metrics http.Handler // promhttp-обработчик, собирается в main
}

func New(store SnapshotSource, metrics http.Handler, logger *zap.Logger) *ConsoleServer {
	s := &ConsoleServer{
		router:  chi.NewRouter(),
		logger:  logger.Named("console-api"),
		store:   store,
		metrics: metrics,
	}
	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Liveness-проба (внешний диагностический скрипт)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Текущий снапшот + производные метрики одним документом
	r.Get("/api/v1/view", s.getView)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
}

// view — то, что отдаем внешним потребителям (и что рисует TUI):
// снапшот и пересчитанные на лету производные показатели.
type view struct {
	Snapshot domain.Snapshot       `json:"snapshot"`
	Metrics  domain.DerivedMetrics `json:"metrics"`
}

func (s *ConsoleServer) getView(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Current()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view{
		Snapshot: snap,
		Metrics:  domain.ComputeMetrics(snap),
	}); err != nil {
		s.logger.Error("failed to encode view", zap.Error(err))
	}
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
