package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultSettingsURL = "https://techshop.alexbase.net//setting.json"
	DefaultColumnLabel = "訂單號"
	DefaultLogDirName  = "Logs"
)

// Config parámetros locales de la corrida. Los valores por defecto salen de
// variables AUTORETURN_* y los flags de la línea de comandos los pisan.
type Config struct {
	SettingsURL      string        `envconfig:"SETTINGS_URL" default:"https://techshop.alexbase.net//setting.json"`
	SettingsTimeout  time.Duration `envconfig:"SETTINGS_TIMEOUT" default:"30s"`
	LogDir           string        `envconfig:"LOG_DIR"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	ColumnLabel      string        `envconfig:"COLUMN_LABEL" default:"訂單號"`
	MaxRetries       int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryDelay       time.Duration `envconfig:"RETRY_DELAY" default:"10m"`
	RequestTimeout   time.Duration `envconfig:"REQUEST_TIMEOUT" default:"20m"`
	BreakerThreshold uint32        `envconfig:"BREAKER_THRESHOLD" default:"8"`
	StrictTimeout    bool          `envconfig:"STRICT_TIMEOUT" default:"false"`
	JSONOutput       bool          `envconfig:"JSON_OUTPUT" default:"false"`
	QueryChunkSize   int           `envconfig:"QUERY_CHUNK_SIZE" default:"500"`
}

// Load lee la configuración desde el entorno (prefijo AUTORETURN)
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("autoreturn", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.LogDir == "" {
		cfg.LogDir = defaultLogDir()
	}
	return cfg, nil
}

// Validate revisa los límites de los parámetros numéricos
func (c *Config) Validate() error {
	if c.SettingsURL == "" {
		return fmt.Errorf("settings url is required")
	}
	if c.ColumnLabel == "" {
		return fmt.Errorf("column label is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must be >= 0, got %s", c.RetryDelay)
	}
	// Los fallos de una sola orden no pueden abrir el breaker
	if c.BreakerThreshold > 0 && int64(c.BreakerThreshold) <= int64(c.MaxRetries)+1 {
		return fmt.Errorf("breaker threshold must be greater than max retries + 1 (%d) or 0 to disable, got %d",
			c.MaxRetries+1, c.BreakerThreshold)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be > 0, got %s", c.RequestTimeout)
	}
	if c.SettingsTimeout <= 0 {
		return fmt.Errorf("settings timeout must be > 0, got %s", c.SettingsTimeout)
	}
	if c.QueryChunkSize <= 0 {
		return fmt.Errorf("query chunk size must be > 0, got %d", c.QueryChunkSize)
	}
	return nil
}

// defaultLogDir carpeta Logs junto al ejecutable; si no se puede resolver,
// relativa al directorio de trabajo.
func defaultLogDir() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultLogDirName
	}
	return filepath.Join(filepath.Dir(exe), DefaultLogDirName)
}
