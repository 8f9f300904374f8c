package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/annel0/voxelcore/internal/vec"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig возвращается Validate
var ErrInvalidConfig = errors.New("invalid config")

// Config корневая структура конфигурации приложения.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Generator GeneratorConfig `yaml:"generator"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Events    EventsConfig    `yaml:"events"`
}

// WorldConfig задаёт размеры мира. Значения фиксируются при старте.
type WorldConfig struct {
	Chunk          vec.Extent    `yaml:"chunk"` // размер чанка в вокселях
	Grid           vec.Extent    `yaml:"grid"`  // размер мира в чанках
	Workers        int           `yaml:"workers"`
	UpdateInterval time.Duration `yaml:"update_interval"`
}

// GeneratorConfig выбирает и настраивает генератор чанков
type GeneratorConfig struct {
	Name       string  `yaml:"name"` // solid | sparse | terrain | caves
	Block      string  `yaml:"block"`
	Seed       int64   `yaml:"seed"`
	Density    float64 `yaml:"density"`     // sparse: доля заполненных ячеек
	NoiseScale float64 `yaml:"noise_scale"` // terrain/caves: масштаб шума
	BaseHeight int     `yaml:"base_height"` // terrain: средняя высота поверхности
	Amplitude  int     `yaml:"amplitude"`   // terrain: размах высот
	SeaLevel   int     `yaml:"sea_level"`   // terrain: уровень воды (-1 — без воды)
	Threshold  float64 `yaml:"threshold"`   // caves: порог пустоты
}

type MetricsConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  bool   `yaml:"file"`
}

// TracingConfig включает экспорт трейсов OpenTelemetry по OTLP/HTTP
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Service  string `yaml:"service"`
	Endpoint string `yaml:"endpoint"` // host:port коллектора
}

// Бэкенды шины событий
const (
	EventsMemory    = "memory"
	EventsJetStream = "jetstream"
)

// EventsConfig выбирает шину событий жизненного цикла чанков
type EventsConfig struct {
	Backend   string        `yaml:"backend"`   // memory | jetstream
	Buffer    int           `yaml:"buffer"`    // memory: ёмкость очереди
	URL       string        `yaml:"url"`       // jetstream: адрес NATS
	Stream    string        `yaml:"stream"`    // jetstream: имя стрима
	Retention time.Duration `yaml:"retention"` // jetstream: MaxAge сообщений
}

// Default возвращает конфигурацию по умолчанию: чанк 16x128x16, мир 32x3x32
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Chunk:          vec.Extent{W: 16, H: 128, D: 16},
			Grid:           vec.Extent{W: 32, H: 3, D: 32},
			Workers:        8,
			UpdateInterval: 50 * time.Millisecond,
		},
		Generator: GeneratorConfig{
			Name:       "terrain",
			Block:      "grass",
			Seed:       1,
			Density:    0.05,
			NoiseScale: 0.02,
			BaseHeight: 160,
			Amplitude:  48,
			SeaLevel:   150,
			Threshold:  0.35,
		},
		Logging: LoggingConfig{Level: "info"},
		Tracing: TracingConfig{Service: "voxeld", Endpoint: "localhost:4318"},
		Events: EventsConfig{
			Backend:   EventsMemory,
			Buffer:    1024,
			Stream:    "VOXEL_EVENTS",
			Retention: time.Hour,
		},
	}
}

// GetMetricsPort возвращает порт метрик с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(m.Port, "VOXEL_METRICS_PORT", 2112)
}

// GetURL возвращает адрес NATS: config -> env VOXEL_NATS_URL -> nats://127.0.0.1:4222
func (e *EventsConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if env := os.Getenv("VOXEL_NATS_URL"); env != "" {
		return env
	}
	return "nats://127.0.0.1:4222"
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Validate проверяет размеры и параметры
func (c *Config) Validate() error {
	if err := c.World.Chunk.Validate(); err != nil {
		return fmt.Errorf("%w: world.chunk: %v", ErrInvalidConfig, err)
	}
	g := c.World.Grid
	if g.W < 1 || g.H < 1 || g.D < 1 {
		return fmt.Errorf("%w: world.grid %s must be positive on every axis", ErrInvalidConfig, g)
	}
	if c.World.Workers < 1 {
		return fmt.Errorf("%w: world.workers must be >= 1, got %d", ErrInvalidConfig, c.World.Workers)
	}
	if c.World.UpdateInterval <= 0 {
		return fmt.Errorf("%w: world.update_interval must be positive", ErrInvalidConfig)
	}
	if c.Generator.Density < 0 || c.Generator.Density > 1 {
		return fmt.Errorf("%w: generator.density must be in [0,1], got %v", ErrInvalidConfig, c.Generator.Density)
	}
	switch c.Events.Backend {
	case EventsMemory:
		if c.Events.Buffer < 1 {
			return fmt.Errorf("%w: events.buffer must be >= 1, got %d", ErrInvalidConfig, c.Events.Buffer)
		}
	case EventsJetStream:
		if c.Events.Stream == "" {
			return fmt.Errorf("%w: events.stream is required for jetstream", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown events.backend %q", ErrInvalidConfig, c.Events.Backend)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG, иначе возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
