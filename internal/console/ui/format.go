package ui

import (
	"fmt"
	"time"

	"github.com/xela07ax/autosre-console/internal/domain"
)

// Цветовые теги tview по статусу сервиса. Неизвестные статусы — желтым:
// лучше привлечь внимание, чем молча покрасить в зеленый.
func statusTag(status string) string {
	switch status {
	case domain.ServiceHealthy:
		return "[green]"
	case domain.ServiceUnhealthy:
		return "[red]"
	default:
		return "[yellow]"
	}
}

func severityTag(severity float64) string {
	switch {
	case severity >= 0.8:
		return "[red]"
	case severity >= 0.5:
		return "[orange]"
	default:
		return "[yellow]"
	}
}

// formatAge — возраст снапшота для шапки: "3s ago", "2m14s ago".
func formatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t).Round(time.Second)
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%s ago", d)
}

// formatSeverity — "0.70" без лишних хвостов.
func formatSeverity(severity float64) string {
	return fmt.Sprintf("%.2f", severity)
}

func formatAgent(a domain.AgentStatus) string {
	if a.Active() {
		return fmt.Sprintf("[green]agent active[-] (%d patterns)", a.PatternsLoaded)
	}
	return "[red]agent inactive[-]"
}

// formatSyncState — индикатор свежести данных в шапке.
func formatSyncState(s domain.Snapshot, now time.Time) string {
	switch {
	case s.Empty():
		return "[yellow]waiting for first sync...[-]"
	case !s.Fresh():
		return fmt.Sprintf("[red]data unavailable (%s)[-] last good: %s", s.SyncError, formatAge(s.LastSyncedAt, now))
	default:
		return fmt.Sprintf("[green]synced[-] %s", formatAge(s.LastSyncedAt, now))
	}
}
