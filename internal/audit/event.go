package audit

import "time"

// Исходы действия в журнале.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Event — одно действие оператора в журнале подотчетности.
// Снапшоты не персистятся принципиально, а вот кто и что дергал — персистится.
type Event struct {
	ID         string    `json:"id"`          // UUID записи
	TraceID    string    `json:"trace_id"`    // Сквозной ID действия (он же в логах и уведомлении)
	Action     string    `json:"action"`      // restart_service | simulate_incident
	Target     string    `json:"target"`      // ID сервиса; пусто для simulate
	Status     string    `json:"status"`      // SUCCESS | FAILED
	Error      string    `json:"error"`       // Текст ошибки при FAILED
	DurationMs int64     `json:"duration_ms"` // Сколько ждали бэкенд
	Timestamp  time.Time `json:"timestamp"`
}
