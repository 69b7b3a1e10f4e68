package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xela07ax/autosre-console/internal/domain"
	"github.com/xela07ax/autosre-console/internal/notify"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const actionTimeout = 10 * time.Second

var (
	uiBorderColor = tcell.ColorGray
	uiTitleColor  = tcell.ColorTeal
)

// Actions — что дашборду нужно от диспетчера действий.
type Actions interface {
	RestartService(ctx context.Context, serviceID string) error
	SimulateIncident(ctx context.Context) error
}

// Dashboard — терминальный интерфейс оператора. Рисует только из снапшота:
// никакого собственного состояния данных, кроме последней принятой копии.
// Горячие клавиши: r — рестарт выбранного сервиса, s — синтетический
// инцидент, q — выход.
type Dashboard struct {
	app     *tview.Application
	actions Actions
	logger  *zap.Logger

	header    *tview.TextView
	services  *tview.Table
	incidents *tview.TextView
	feed      *tview.TextView

	snapshotMu sync.RWMutex
	snapshot   domain.Snapshot
	rowIDs     []string // строка таблицы -> ID сервиса
}

func New(actions Actions, logger *zap.Logger) *Dashboard {
	d := &Dashboard{
		app:     tview.NewApplication(),
		actions: actions,
		logger:  logger.Named("ui"),
	}
	d.build()
	return d
}

func (d *Dashboard) build() {
	d.header = tview.NewTextView().SetDynamicColors(true)
	d.header.SetBorder(true).SetTitle(" AutoSRE ").SetTitleColor(uiTitleColor).SetBorderColor(uiBorderColor)

	d.services = tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	d.services.SetBorder(true).SetTitle(" Services (r: restart) ").SetTitleColor(uiTitleColor).SetBorderColor(uiBorderColor)

	d.incidents = tview.NewTextView().SetDynamicColors(true)
	d.incidents.SetBorder(true).SetTitle(" Active Incidents (s: simulate) ").SetTitleColor(uiTitleColor).SetBorderColor(uiBorderColor)

	d.feed = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	d.feed.SetBorder(true).SetTitle(" Notifications ").SetTitleColor(uiTitleColor).SetBorderColor(uiBorderColor)

	body := tview.NewFlex().
		AddItem(d.services, 0, 3, true).
		AddItem(d.incidents, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.header, 4, 0, false).
		AddItem(body, 0, 3, true).
		AddItem(d.feed, 7, 0, false)

	d.app.SetRoot(root, true)
	d.app.SetInputCapture(d.handleKey)
}

func (d *Dashboard) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Rune() {
	case 'q':
		d.app.Stop()
		return nil
	case 'r':
		d.restartSelected()
		return nil
	case 's':
		d.simulateIncident()
		return nil
	}
	return ev
}

// restartSelected запускает рестарт в фоне: event loop терминала не должен
// ждать бэкенд. Результат придет через фид уведомлений.
func (d *Dashboard) restartSelected() {
	row, _ := d.services.GetSelection()

	d.snapshotMu.RLock()
	idx := row - 1 // нулевая строка — заголовок
	var serviceID string
	if idx >= 0 && idx < len(d.rowIDs) {
		serviceID = d.rowIDs[idx]
	}
	d.snapshotMu.RUnlock()

	if serviceID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		d.actions.RestartService(ctx, serviceID) // исход репортит диспетчер
	}()
}

func (d *Dashboard) simulateIncident() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		d.actions.SimulateIncident(ctx)
	}()
}

// ApplySnapshot принимает свежий снапшот от планировщика.
// Вызывается из горутины воркера; перерисовка уезжает в event loop.
func (d *Dashboard) ApplySnapshot(snap domain.Snapshot) {
	d.snapshotMu.Lock()
	d.snapshot = snap
	ids := make([]string, 0, len(snap.Services))
	for _, svc := range snap.Services {
		ids = append(ids, svc.ID)
	}
	d.rowIDs = ids
	d.snapshotMu.Unlock()

	d.app.QueueUpdateDraw(d.render)
}

// AppendNotification выводит событие фида в панель уведомлений.
func (d *Dashboard) AppendNotification(n notify.Notification) {
	tag := "[green]"
	if n.Outcome == notify.Failure {
		tag = "[red]"
	}
	line := fmt.Sprintf("%s %s%s[-]\n", n.At.Format("15:04:05"), tag, tview.Escape(n.Message))

	d.app.QueueUpdateDraw(func() {
		fmt.Fprint(d.feed, line)
		d.feed.ScrollToEnd()
	})
}

// render перерисовывает все панели из последнего снапшота.
// Выполняется только в event loop tview.
func (d *Dashboard) render() {
	d.snapshotMu.RLock()
	snap := d.snapshot
	d.snapshotMu.RUnlock()

	now := time.Now()
	m := domain.ComputeMetrics(snap)

	d.header.SetText(fmt.Sprintf(
		" %s | %s\n [green]%d healthy[-] / [red]%d unhealthy[-] | [orange]%d active incidents[-]",
		formatSyncState(snap, now),
		formatAgent(snap.Agent),
		m.HealthyCount, m.UnhealthyCount, m.ActiveIncidentCount,
	))

	d.renderServices(snap)
	d.renderIncidents(snap)
}

func (d *Dashboard) renderServices(snap domain.Snapshot) {
	d.services.Clear()
	for col, h := range []string{"NAME", "TYPE", "PORT", "STATUS"} {
		d.services.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(uiTitleColor).
			SetSelectable(false).
			SetExpansion(1))
	}

	for i, svc := range snap.Services {
		row := i + 1
		d.services.SetCell(row, 0, tview.NewTableCell(tview.Escape(svc.Name)).SetExpansion(2))
		d.services.SetCell(row, 1, tview.NewTableCell(svc.Type))
		d.services.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%d", svc.Port)))
		d.services.SetCell(row, 3, tview.NewTableCell(statusTag(svc.Status)+svc.Status+"[-]"))
	}
}

func (d *Dashboard) renderIncidents(snap domain.Snapshot) {
	d.incidents.Clear()
	active := 0
	for _, inc := range snap.Incidents {
		if !inc.Active() {
			continue
		}
		active++
		fmt.Fprintf(d.incidents, "%s%s[-] %s  sev=%s  [gray]%s[-]\n",
			severityTag(inc.Severity),
			inc.Status,
			tview.Escape(inc.ServiceName),
			formatSeverity(inc.Severity),
			tview.Escape(inc.Description),
		)
	}
	if active == 0 {
		fmt.Fprint(d.incidents, "[gray]no active incidents[-]")
	}
}

// Run блокирует до выхода оператора (q / внешний Stop).
func (d *Dashboard) Run() error {
	d.logger.Info("dashboard started")
	return d.app.Run()
}

// Stop завершает event loop (graceful shutdown по сигналу).
func (d *Dashboard) Stop() {
	d.app.Stop()
}
