package flags

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings struct
type Settings struct {
	Host                       string
	Port                       int
	LogLevel                   string
	Secret                     string
	Issuer                     string
	DSN                        string
	AccessTokenDurationMinutes int
	ShutdownTimeoutSeconds     int
}

// NewSettings creates a new settings instance
func NewSettings() *Settings {
	return &Settings{}
}

// LoadConfig loads the configuration from .env, config file, environment variables, flags, and default values
func (s *Settings) LoadConfig(args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Установка значений по умолчанию
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 8000)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "your-secret-key")
	v.SetDefault("issuer", "gonotes")
	v.SetDefault("dsn", "host=localhost user=postgres password=password dbname=notes sslmode=disable")
	v.SetDefault("access_token_duration_minutes", 60)
	v.SetDefault("shutdown_timeout_seconds", 10)

	// Определение флагов командной строки
	fs := pflag.NewFlagSet("notesd", pflag.ContinueOnError)
	fs.StringP("host", "H", "", "Server host")
	fs.IntP("port", "P", 0, "Server port")
	fs.StringP("log_level", "L", "", "Log level")
	fs.StringP("secret", "S", "", "JWT secret key")
	fs.StringP("issuer", "I", "", "JWT issuer")
	fs.StringP("dsn", "D", "", "Data source name")
	fs.IntP("access_token_duration_minutes", "A", 0, "Access token duration in minutes")
	fs.Int("shutdown_timeout_seconds", 0, "Graceful shutdown timeout in seconds")
	fs.StringP("config", "c", "", "Path to the config file")

	if err := fs.Parse(args); err != nil {
		return err
	}

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
	v.AutomaticEnv()

	configFile, _ := fs.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("notesd")
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
	s.Host = v.GetString("host")
	s.Port = v.GetInt("port")
	s.LogLevel = v.GetString("log_level")
	s.Secret = v.GetString("secret")
	s.Issuer = v.GetString("issuer")
	s.DSN = v.GetString("dsn")
	s.AccessTokenDurationMinutes = v.GetInt("access_token_duration_minutes")
	s.ShutdownTimeoutSeconds = v.GetInt("shutdown_timeout_seconds")

	switch {
	case s.Port <= 0 || s.Port > 65535:
		return fmt.Errorf("invalid port %d", s.Port)
	case s.Secret == "":
		return errors.New("secret must not be empty")
	case s.AccessTokenDurationMinutes <= 0:
		return fmt.Errorf("access_token_duration_minutes must be positive, got %d", s.AccessTokenDurationMinutes)
	}

	return nil
}

// GetAccessTokenDuration returns the access token lifetime
func (s *Settings) GetAccessTokenDuration() time.Duration {
	return time.Duration(s.AccessTokenDurationMinutes) * time.Minute
}

// GetShutdownTimeout returns how long in-flight requests get on shutdown
func (s *Settings) GetShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// GetAddr returns host:port to listen on
func (s *Settings) GetAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// GetDSN returns the data source name
func (s *Settings) GetDSN() string {
	return s.DSN
}

// GetLogLevel returns the log level
func (s *Settings) GetLogLevel() string {
	return s.LogLevel
}

// GetSecret returns the JWT secret key
func (s *Settings) GetSecret() string {
	return s.Secret
}

// GetIssuer returns the JWT issuer
func (s *Settings) GetIssuer() string {
	return s.Issuer
}
