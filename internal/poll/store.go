package poll

import (
	"sync/atomic"

	"github.com/xela07ax/autosre-console/internal/domain"
)

// Store хранит текущий снапшот. Писатель один — воркер планировщика;
// читателей много (TUI, HTTP-срез, метрики). Публикация атомарная:
// читатель всегда видит либо прошлый снапшот целиком, либо новый целиком,
// никогда — смесь.
type Store struct {
	v atomic.Value // domain.Snapshot
}

func NewStore() *Store {
	s := &Store{}
	s.v.Store(domain.Snapshot{})
	return s
}

// Publish целиком заменяет текущий снапшот.
func (s *Store) Publish(snap domain.Snapshot) {
	s.v.Store(snap)
}

// Current возвращает последний опубликованный снапшот.
// До первой синхронизации — пустой снапшот (Empty() == true).
func (s *Store) Current() domain.Snapshot {
	return s.v.Load().(domain.Snapshot)
}
