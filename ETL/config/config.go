package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RestoreConfig содержит конфигурацию переноса данных в продакшн
type RestoreConfig struct {
	// Подключение к локальной (исходной) базе данных
	Source DatabaseConfig `yaml:"source"`

	// Адрес продакшн-сервера и пути API
	BaseURL          string `yaml:"base_url"`
	AuthPath         string `yaml:"auth_path"`
	ImportPathPrefix string `yaml:"import_path_prefix"`

	// Учётные данные администратора
	AdminUID      string `yaml:"admin_uid"`
	AdminPassword string `yaml:"admin_password"`

	// JSON-снимок, который читается, если база недоступна
	SnapshotPath string `yaml:"snapshot_path"`

	// Таймаут запроса импорта одной категории
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Данные, создаваемые сервером при инициализации, которые не нужно переносить
	Filter FilterConfig `yaml:"filter"`

	// Каталог для лог-файлов
	LogDir string `yaml:"log_dir"`

	// Включение/отключение подробного логирования
	EnableDetailedLogging bool `yaml:"enable_detailed_logging"`
}

// DatabaseConfig содержит настройки подключения к базе данных.
// Для sqlite используется Path, для mysql - Host/Port/User/Password/DBName.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// FilterConfig - списки данных по умолчанию (seed/test), исключаемых из переноса
type FilterConfig struct {
	Users    []string `yaml:"users"`
	Sections []string `yaml:"sections"`
	Topics   []string `yaml:"topics"`

	// Если true, микроблоги и посты без определимого автора переносятся
	KeepOrphans bool `yaml:"keep_orphans"`
}

// Значения конфигурации по умолчанию
var (
	DefaultSourceConfig = DatabaseConfig{
		Driver: "sqlite",
		Path:   "instance/volumes/user_management.db",
	}

	DefaultFilterConfig = FilterConfig{
		Users: []string{"admin", "user", "niko", "toby", "hop"},
		Sections: []string{
			"CSA",      // Computer Science A
			"CSP",      // Computer Science Principles
			"Robotics", // Engineering Robotics
			"CSSE",     // Computer Science and Software Engineering
		},
		Topics: []string{
			"/lessons/flask-introduction",
			"/hacks/javascript-basics",
			"/projects/portfolio-showcase",
			"/general/daily-standup",
			"/resources/study-materials",
		},
	}

	DefaultRestoreConfig = RestoreConfig{
		Source:           DefaultSourceConfig,
		BaseURL:          "https://flask.opencodingsociety.com",
		AuthPath:         "/api/authenticate",
		ImportPathPrefix: "/api/export/import/",
		AdminUID:         "admin",
		SnapshotPath:     "instance/data.json",
		RequestTimeout:   120 * time.Second,
		Filter:           DefaultFilterConfig,
		LogDir:           ".",
	}
)

// Переменные окружения, переопределяющие файл конфигурации
const (
	EnvAdminUID      = "RESTORE_ADMIN_UID"
	EnvAdminPassword = "RESTORE_ADMIN_PASSWORD"
	EnvBaseURL       = "RESTORE_BASE_URL"
	EnvDBPath        = "RESTORE_DB_PATH"
)

// GetConfig возвращает конфигурацию по умолчанию
func GetConfig() RestoreConfig {
	config := DefaultRestoreConfig

	// Списки копируются, чтобы изменения конфигурации не затрагивали значения по умолчанию
	config.Filter.Users = append([]string(nil), DefaultFilterConfig.Users...)
	config.Filter.Sections = append([]string(nil), DefaultFilterConfig.Sections...)
	config.Filter.Topics = append([]string(nil), DefaultFilterConfig.Topics...)

	return config
}

// LoadConfig читает YAML-файл поверх значений по умолчанию и применяет
// переменные окружения. Пустой путь означает только значения по умолчанию.
func LoadConfig(path string) (RestoreConfig, error) {
	config := GetConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&config)

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func applyEnvOverrides(config *RestoreConfig) {
	if v := os.Getenv(EnvAdminUID); v != "" {
		config.AdminUID = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		config.AdminPassword = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		config.BaseURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		config.Source.Path = v
	}
}

// Validate проверяет обязательные поля
func (c RestoreConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.AdminUID == "" {
		return fmt.Errorf("admin_uid is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	switch c.Source.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported source driver %q", c.Source.Driver)
	}
	return nil
}

// AuthURL возвращает полный адрес аутентификации
func (c RestoreConfig) AuthURL() string {
	return c.BaseURL + c.AuthPath
}

// ImportURL возвращает адрес импорта категории
func (c RestoreConfig) ImportURL(category string) string {
	return c.BaseURL + c.ImportPathPrefix + category
}
