package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/xela07ax/autosre-console/internal/audit"

	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres
)

// ActionRepo пишет журнал действий оператора в таблицу operator_actions.
type ActionRepo struct {
	db *sql.DB
}

func NewActionRepo(connString string) (*ActionRepo, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &ActionRepo{db: db}, nil
}

// Ping проверяет соединение на старте (main вызывает с таймаутом).
func (r *ActionRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *ActionRepo) Close() error {
	return r.db.Close()
}

func (r *ActionRepo) WriteBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	// Количество колонок в таблице operator_actions
	numFields := 8
	placeholderStr := ""
	vals := make([]interface{}, 0, len(events)*numFields)

	// Динамически строим запрос для пакетной вставки
	for i, e := range events {
		p := i * numFields
		placeholderStr += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d),",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8)

		vals = append(vals,
			e.ID, e.TraceID, e.Action, e.Target,
			e.Status, e.Error, e.DurationMs, e.Timestamp,
		)
	}

	query := fmt.Sprintf(
		"INSERT INTO operator_actions (id, trace_id, action, target, status, error, duration_ms, created_at) VALUES %s",
		strings.TrimSuffix(placeholderStr, ","),
	)

	_, err := r.db.ExecContext(ctx, query, vals...)
	return err
}
