package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации консоли.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Poll    PollConfig    `mapstructure:"poll"`
	Server  ServerConfig  `mapstructure:"server"`
	Audit   AuditConfig   `mapstructure:"audit"`
	UI      UIConfig      `mapstructure:"ui"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// BackendConfig описывает подключение к REST API бэкенда AutoSRE.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Настройки Circuit Breaker на клиенте бэкенда
	CBMaxRequests         uint32        `mapstructure:"cb_max_requests"`
	CBInterval            time.Duration `mapstructure:"cb_interval"`
	CBTimeout             time.Duration `mapstructure:"cb_timeout"`
	CBConsecutiveFailures uint32        `mapstructure:"cb_consecutive_failures"`
}

// PollConfig — период фоновой синхронизации.
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// ServerConfig — собственная HTTP-поверхность консоли (liveness, срез, метрики).
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AuditConfig — журнал действий оператора. DSN пустой — журнал выключен.
type AuditConfig struct {
	DSN           string        `mapstructure:"dsn"`
	BufferSize    int           `mapstructure:"buffer_size"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// UIConfig настраивает терминальный дашборд.
type UIConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	NotifyBuffer int  `mapstructure:"notify_buffer"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	File   string `mapstructure:"file"`   // путь; пусто — stderr
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// 2. ENV перекрывает файл: BACKEND_BASE_URL=... перекроет backend.base_url
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Дефолты
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Файла нет — работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.base_url", "http://localhost:8000")
	// Таймаут чтения меньше периода опроса: завязший запрос не должен
	// съедать следующий тик
	v.SetDefault("backend.timeout", 4*time.Second)
	v.SetDefault("backend.cb_max_requests", 3)
	v.SetDefault("backend.cb_interval", 30*time.Second)
	v.SetDefault("backend.cb_timeout", 30*time.Second)
	v.SetDefault("backend.cb_consecutive_failures", 5)

	v.SetDefault("poll.interval", 5*time.Second)

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("audit.buffer_size", 1024)
	v.SetDefault("audit.batch_size", 50)
	v.SetDefault("audit.flush_interval", 1*time.Second)

	v.SetDefault("ui.enabled", true)
	v.SetDefault("ui.notify_buffer", 128)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
}
