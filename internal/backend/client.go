package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/xela07ax/autosre-console/internal/domain"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// API — полный контракт бэкенда AutoSRE: три чтения и два действия.
// Объявлен здесь, чтобы Breaker мог оборачивать клиента целиком;
// потребители (агрегатор, диспетчер) объявляют свои узкие интерфейсы сами.
type API interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	ListActiveIncidents(ctx context.Context) ([]domain.Incident, error)
	AgentStatus(ctx context.Context) (domain.AgentStatus, error)
	RestartService(ctx context.Context, serviceID string) error
	SimulateIncident(ctx context.Context) error
}

// Client — типизированная обертка над REST API бэкенда. Один вызов — один
// HTTP-запрос, никаких ретраев и кэшей: это забота вызывающих слоев.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger.Named("backend"),
	}
}

func (c *Client) ListServices(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	if err := c.getJSON(ctx, "list_services", "/api/v1/services", &out); err != nil {
		return nil, err
	}
	// Бэкенд на пустой платформе отдает [], но перестрахуемся: дальше по коду
	// nil и пустой срез должны быть неразличимы.
	if out == nil {
		out = []domain.Service{}
	}
	return out, nil
}

func (c *Client) ListActiveIncidents(ctx context.Context) ([]domain.Incident, error) {
	var out []domain.Incident
	if err := c.getJSON(ctx, "list_incidents", "/api/v1/incidents?active=true", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Incident{}
	}
	return out, nil
}

func (c *Client) AgentStatus(ctx context.Context) (domain.AgentStatus, error) {
	var out domain.AgentStatus
	if err := c.getJSON(ctx, "agent_status", "/api/v1/ai/status", &out); err != nil {
		return domain.AgentStatus{}, err
	}
	return out, nil
}

func (c *Client) RestartService(ctx context.Context, serviceID string) error {
	path := fmt.Sprintf("/api/v1/services/%s/restart", url.PathEscape(serviceID))
	return c.postAction(ctx, "restart_service", path)
}

func (c *Client) SimulateIncident(ctx context.Context) error {
	return c.postAction(ctx, "simulate_incident", "/api/v1/simulate/incident")
}

// getJSON выполняет чтение: GET, ожидаем 2xx и валидный JSON в out.
func (c *Client) getJSON(ctx context.Context, op, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &ProtocolError{Op: op, Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Тело дочитываем, чтобы соединение вернулось в пул
		io.Copy(io.Discard, resp.Body)
		return &ProtocolError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProtocolError{Op: op, Cause: err}
	}

	c.logger.Debug("backend read ok", zap.String("op", op))
	return nil
}

// postAction выполняет мутирующий вызов. Тела запроса нет — контракт
// бэкенда его не требует; тело ответа нам не нужно, важен только статус.
func (c *Client) postAction(ctx context.Context, op, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return &ProtocolError{Op: op, Cause: err}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Cause: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ActionRejected{Op: op, StatusCode: resp.StatusCode}
	}

	c.logger.Info("backend action accepted", zap.String("op", op), zap.Int("status", resp.StatusCode))
	return nil
}
