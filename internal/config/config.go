package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// драйверы хранилища
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config определяет структуру конфигурации всего приложения целиком
type Config struct {
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Kafka      `yaml:"kafka"`
	Logger     `yaml:"logger"`
	Storage    `yaml:"storage"`
	Filter     `yaml:"filter"`
	Validation `yaml:"validation"`
	Pagination `yaml:"pagination"`
	Metrics    `yaml:"metrics"`
}

// HTTPServer содержит конфигурацию для HTTP-сервера
type HTTPServer struct {
	Port    string        `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
	// MaxUploadSize: предел размера загружаемого файла импорта в байтах
	MaxUploadSize int64 `yaml:"max_upload_size"`
}

// Postgres содержит конфигурацию для подключения к базе данных
type Postgres struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	DBName   string `yaml:"db_name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
}

// Kafka содержит конфигурацию для подключения к кафке
// через топик приходят пакеты заказов на импорт
type Kafka struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Logger содержит конфигурацию для логгера
type Logger struct {
	Level string `yaml:"level"`
	// Format: text для локальной разработки, json для продакшена
	Format string `yaml:"format"`
}

// Storage выбирает реализацию хранилищ: postgres или memory
type Storage struct {
	Driver string `yaml:"driver"`
}

// Filter управляет разбором критериев фильтрации
type Filter struct {
	RejectUnknownKeys bool `yaml:"reject_unknown_keys"`
}

// Validation позволяет переопределить тексты нарушений, ключ "поле.тег"
type Validation struct {
	Messages map[string]string `yaml:"messages"`
}

// Pagination содержит значения по умолчанию для постраничной выдачи
type Pagination struct {
	DefaultSize int `yaml:"default_size"`
}

// Metrics содержит настройки экспорта метрик
type Metrics struct {
	Path string `yaml:"path"`
}

// Path возвращает путь к конфигу: переменная CONFIG_PATH важнее значения по умолчанию
func Path(defaultPath string) string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultPath
}

// Load читает конфигурацию из файла и проставляет значения по умолчанию
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch cfg.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if cfg.Pagination.DefaultSize <= 0 {
		return nil, fmt.Errorf("pagination.default_size must be positive, got %d", cfg.Pagination.DefaultSize)
	}

	return cfg, nil
}

// MustLoad загружает конфигурацию из файла по указанному пути
// в случае ошибки программа завершается с фатальной ошибкой
func MustLoad(configPath string) *Config {
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %s", err)
	}

	return cfg
}

func defaults() *Config {
	return &Config{
		HTTPServer: HTTPServer{
			Port:          ":8080",
			Timeout:       10 * time.Second,
			MaxUploadSize: 10 << 20,
		},
		Logger:     Logger{Level: "INFO", Format: "text"},
		Storage:    Storage{Driver: StorageDriverPostgres},
		Filter:     Filter{RejectUnknownKeys: true},
		Pagination: Pagination{DefaultSize: 10},
		Metrics:    Metrics{Path: "/metrics"},
	}
}
