package domain

import "time"

// Статусы сервисов. Множество открытое: бэкенд волен прислать значение,
// о котором консоль не знает — мы его не нормализуем, а показываем как есть.
const (
	ServiceHealthy   = "healthy"
	ServiceUnhealthy = "unhealthy"
	ServiceUnknown   = "unknown"
)

// Статусы инцидентов. Закрыт для нас только один: "resolved" выводит
// инцидент из активных.
const (
	IncidentResolved = "resolved"
)

// Состояния remediation-агента на бэкенде.
const (
	AgentActive   = "active"
	AgentInactive = "inactive"
)

// Service — наблюдаемый сервис платформы. Консоль держит read-only копию:
// единственный источник правды — бэкенд, копия целиком заменяется при каждой
// синхронизации.
type Service struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Port   int    `json:"port"`
	Status string `json:"status"`

	// Метаданные мониторинга (бэкенд может их не заполнять)
	HealthEndpoint string     `json:"health_endpoint,omitempty"`
	LastCheck      *time.Time `json:"last_check,omitempty"`
}

// Incident — инцидент, зафиксированный агентом. Консоль инциденты не меняет:
// они эволюционируют только на стороне бэкенда и наблюдаются на следующем
// цикле синхронизации.
type Incident struct {
	ID          string  `json:"id"`
	ServiceID   string  `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Type        string  `json:"type"`
	Severity    float64 `json:"severity"` // 0.0 – 1.0
	Description string  `json:"description"`
	Status      string  `json:"status"` // open, mitigating, resolved, ...

	DetectedAt *time.Time `json:"detected_at,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// Что агент уже успел сделать
	ActionTaken string `json:"action_taken,omitempty"`
}

// Active сообщает, учитывается ли инцидент как активный.
func (i Incident) Active() bool {
	return i.Status != IncidentResolved
}

// AgentStatus — живость remediation-агента и размер его базы паттернов.
type AgentStatus struct {
	Status           string `json:"status"` // active | inactive
	Model            string `json:"model,omitempty"`
	AnomalyDetection string `json:"anomaly_detection,omitempty"`
	PatternsLoaded   int    `json:"patterns_loaded"`
}

// Active сообщает, жив ли агент.
func (a AgentStatus) Active() bool {
	return a.Status == AgentActive
}
