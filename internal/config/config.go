// config реализует конфигурацию threads-service: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	GRPC     GRPCConfig    `yaml:"grpc"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	Auth     AuthConfig    `yaml:"auth"`
	Limits   LimitsConfig  `yaml:"limits"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"5s"`
}

// HTTPConfig — публичный REST API, health и метрики.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
}

// GRPCConfig — gRPC health-сервер для оркестратора.
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50055"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (g GRPCConfig) Addr() string {
	return net.JoinHostPort(g.Host, g.Port)
}

// DBConfig — настройки подключения к MongoDB.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
	// Transactions — удалять поддерево в одной транзакции (нужен replica set).
	Transactions bool `yaml:"transactions" env:"DB_TRANSACTIONS" env-default:"false"`
}

// RedisConfig — канал сигналов ревалидации. Пустой URL — сигналы только логируются.
type RedisConfig struct {
	URL     string `yaml:"url" env:"REDIS_URL"`
	Channel string `yaml:"channel" env:"REDIS_CHANNEL" env-default:"threads:revalidate"`
}

// AuthConfig — проверка сессионных токенов провайдера идентичности.
type AuthConfig struct {
	Secret   string        `yaml:"secret" env:"AUTH_SECRET"`
	Issuer   string        `yaml:"issuer" env:"AUTH_ISSUER"`
	Audience []string      `yaml:"audience" env:"AUTH_AUDIENCE" env-separator:","`
	Leeway   time.Duration `yaml:"leeway" env:"AUTH_LEEWAY" env-default:"5s"`
}

// LimitsConfig — лимиты выдачи ленты и глубина сборки ветки.
type LimitsConfig struct {
	// Пагинация: page_size не задан -> Default; верхняя граница — Max.
	Default int64 `yaml:"default" env:"DEFAULT_LIMIT" env-default:"20"`
	Max     int64 `yaml:"max" env:"MAX_LIMIT" env-default:"100"`
	// ThreadDepth — сколько уровней ответов подтягивается при открытии поста.
	ThreadDepth int `yaml:"thread_depth" env:"THREAD_DEPTH" env-default:"2"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	var (
		c   *Config
		err error
	)

	switch envPath := os.Getenv("CONFIG_PATH"); {
	case path != "":
		c, err = tryRead(path)
	case envPath != "":
		c, err = tryRead(envPath)
	default:
		if _, statErr := os.Stat("local.yaml"); statErr == nil {
			c, err = tryRead("local.yaml")
			break
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
		c = &cfg
	}

	if err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	if c.Limits.Default <= 0 {
		return fmt.Errorf("limits.default must be > 0")
	}

	if c.Limits.Max <= 0 {
		return fmt.Errorf("limits.max must be > 0")
	}

	if c.Limits.Default > c.Limits.Max {
		return fmt.Errorf("limits.default must be <= limits.max")
	}

	if c.Limits.ThreadDepth < 1 || c.Limits.ThreadDepth > 8 {
		return fmt.Errorf("limits.thread_depth must be in [1, 8]")
	}

	if c.Env == "prod" && c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required in prod")
	}

	return nil
}
