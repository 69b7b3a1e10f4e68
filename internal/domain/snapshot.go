package domain

import "time"

// SyncErrorKind классифицирует причину неудачной синхронизации.
type SyncErrorKind string

const (
	SyncOK       SyncErrorKind = ""         // последняя синхронизация прошла
	SyncNetwork  SyncErrorKind = "network"  // бэкенд недоступен / таймаут
	SyncProtocol SyncErrorKind = "protocol" // не-2xx или битое тело ответа
)

// Snapshot — агрегат всех опрашиваемых данных в один момент времени.
// Инвариант: снапшот либо полностью собран из одного цикла (все три чтения
// успешны), либо помечен SyncError и содержит данные предыдущего удачного
// цикла без изменений. Смешивание сервисов и инцидентов из разных моментов
// запрещено — иначе оператор увидит ложные причинно-следственные связи.
//
// Значение передается по копии и после публикации не мутируется.
type Snapshot struct {
	Services  []Service   `json:"services"`
	Incidents []Incident  `json:"incidents"`
	Agent     AgentStatus `json:"agent"`

	// Момент последней УСПЕШНОЙ синхронизации. При сбое не обновляется.
	LastSyncedAt time.Time `json:"last_synced_at"`

	// Маркер сбоя последнего цикла. Пустое значение — данные свежие.
	SyncError SyncErrorKind `json:"sync_error,omitempty"`
}

// Fresh сообщает, отражает ли снапшот последний успешный цикл.
func (s Snapshot) Fresh() bool {
	return s.SyncError == SyncOK
}

// Empty — снапшот до первой синхронизации (процесс только поднялся).
func (s Snapshot) Empty() bool {
	return s.LastSyncedAt.IsZero()
}
