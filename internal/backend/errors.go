package backend

import "fmt"

// Таксономия ошибок клиента. Политика ретраев здесь не живет принципиально:
// read-путь ретраится только следующим тиком планировщика, мутирующие
// действия не ретраятся вовсе.

// NetworkError — бэкенд недоступен: connection refused, таймаут, обрыв.
type NetworkError struct {
	Op    string // какой вызов упал: list_services, restart_service, ...
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// ProtocolError — бэкенд ответил, но ответ непригоден: не-2xx статус
// на чтении либо тело, которое не разбирается.
type ProtocolError struct {
	Op         string
	StatusCode int // 0, если до статуса не дошло (битое тело)
	Cause      error
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Cause)
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

// ActionRejected — мутирующий вызов дошел до бэкенда и был отвергнут (не-2xx).
type ActionRejected struct {
	Op         string
	StatusCode int
}

func (e *ActionRejected) Error() string {
	return fmt.Sprintf("%s: action rejected with status %d", e.Op, e.StatusCode)
}
