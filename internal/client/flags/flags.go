package flags

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings struct
type Settings struct {
	BaseURL        string
	TimeoutSeconds int
	LogLevel       string
	DBPath         string
	ConfigFile     string
}

// NewSettings creates a new settings instance
func NewSettings() *Settings {
	return &Settings{}
}

// LoadConfig loads the configuration from .env, config file, environment variables, flags and default values.
// args are the command line arguments without the program name.
func (s *Settings) LoadConfig(args []string) error {
	// .env не обязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Установка значений по умолчанию
	v.SetDefault("base_url", "http://localhost:8000")
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("log_level", "warning")
	v.SetDefault("db_path", "notes.db")

	// Определение флагов командной строки
	fs := pflag.NewFlagSet("notes", pflag.ContinueOnError)
	fs.StringP("base_url", "u", "", "Notes API base URL")
	fs.IntP("timeout_seconds", "t", 0, "Request timeout in seconds")
	fs.StringP("log_level", "L", "", "Log level")
	fs.StringP("db_path", "d", "", "Path to the local SQLite database")
	fs.StringP("config", "c", "", "Path to the config file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Связывание только явно заданных флагов, иначе пустые значения перекроют окружение
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	v.SetEnvPrefix("NOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configFile, _ := fs.GetString("config")
	if configFile == "" {
		configFile = os.Getenv("NOTES_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("notes")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Загрузка конфигурации
	s.BaseURL = v.GetString("base_url")
	s.TimeoutSeconds = v.GetInt("timeout_seconds")
	s.LogLevel = v.GetString("log_level")
	s.DBPath = v.GetString("db_path")
	s.ConfigFile = v.ConfigFileUsed()

	if s.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", s.TimeoutSeconds)
	}

	return nil
}

// GetBaseURL returns the notes API base URL
func (s *Settings) GetBaseURL() string {
	return s.BaseURL
}

// GetTimeout returns the request timeout
func (s *Settings) GetTimeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// GetLogLevel returns the log level
func (s *Settings) GetLogLevel() string {
	return s.LogLevel
}

// GetDBPath returns the SQLite database path
func (s *Settings) GetDBPath() string {
	return s.DBPath
}
