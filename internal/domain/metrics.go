package domain

// DerivedMetrics — производные показатели снапшота для шапки дашборда и
// JSON-представления. Отдельного жизненного цикла нет: структура каждый раз
// пересчитывается из снапшота и нигде не кэшируется, чтобы не разъехаться
// с данными, из которых была получена.
type DerivedMetrics struct {
	HealthyCount        int `json:"healthy_count"`
	UnhealthyCount      int `json:"unhealthy_count"`
	ActiveIncidentCount int `json:"active_incident_count"`
}

// ComputeMetrics — чистая тотальная функция над снапшотом, ошибок не бывает.
// Гарантия: HealthyCount + UnhealthyCount == len(Services); всё, что не
// "healthy" (включая "unknown"), считается нездоровым.
func ComputeMetrics(s Snapshot) DerivedMetrics {
	m := DerivedMetrics{}
	for _, svc := range s.Services {
		if svc.Status == ServiceHealthy {
			m.HealthyCount++
		}
	}
	m.UnhealthyCount = len(s.Services) - m.HealthyCount

	for _, inc := range s.Incidents {
		if inc.Active() {
			m.ActiveIncidentCount++
		}
	}
	return m
}
