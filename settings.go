package doze

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/iaconlabs/doze/mediatype"
	"github.com/iaconlabs/doze/request"
	"github.com/iaconlabs/doze/server"
)

// EnvPrefix prefixes the environment variables read by LoadSettings.
const EnvPrefix = "DOZE"

// ErrInvalidSettings is returned when settings fail validation.
var ErrInvalidSettings = errors.New("doze: invalid settings")

var settingsValidator = validator.New()

// Settings holds the process level configuration of a doze server. The
// session callables are code, not settings; RequestConfig combines both.
type Settings struct {
	Addr              string        `yaml:"addr" envconfig:"ADDR"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" envconfig:"READ_HEADER_TIMEOUT" validate:"gte=0"`
	ReadTimeout       time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout      time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gte=0"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gte=0"`

	// MediaTypeExtensions enables ".json" style content typing in paths.
	MediaTypeExtensions bool `yaml:"media_type_extensions" envconfig:"MEDIA_TYPE_EXTENSIONS"`
	// ContextPath, when set, resolves paths from the raw request URI with
	// this prefix removed.
	ContextPath string `yaml:"context_path" envconfig:"CONTEXT_PATH" validate:"omitempty,startswith=/"`

	// StackTraces includes stack traces in recovered panic responses.
	StackTraces bool   `yaml:"stack_traces" envconfig:"STACK_TRACES"`
	LogLevel    string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultSettings returns the settings used when nothing else is configured.
func DefaultSettings() Settings {
	return Settings{Addr: ":8080", LogLevel: "info"}
}

// LoadSettings reads YAML settings from path, applies DOZE_* environment
// overrides and validates the result. An empty path skips the file.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return s, fmt.Errorf("failed to open settings file: %w", err)
		}
		defer file.Close()

		if err := s.decode(file); err != nil {
			return s, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return s, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func (s *Settings) decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to unmarshal settings file: %w", err)
	}
	return nil
}

// Validate checks the settings.
func (s Settings) Validate() error {
	if err := settingsValidator.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

// ServerConfig returns the server configuration described by s.
func (s Settings) ServerConfig(logger *slog.Logger) server.Config {
	return server.Config{
		Addr:              s.Addr,
		ReadHeaderTimeout: s.ReadHeaderTimeout,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
		ShutdownTimeout:   s.ShutdownTimeout,
		Logger:            logger,
	}
}

// RequestConfig combines s with the session callables and media types into
// the configuration shared by every request. A nil registry means
// mediatype.DefaultRegistry().
func (s Settings) RequestConfig(sessions request.SessionFunc, authenticated request.AuthenticatedFunc, registry *mediatype.Registry) *request.Config {
	if registry == nil {
		registry = mediatype.DefaultRegistry()
	}

	cfg := &request.Config{
		MediaTypeExtensions:  s.MediaTypeExtensions,
		SessionFromContext:   sessions,
		SessionAuthenticated: authenticated,
		MediaTypes:           registry,
	}
	if s.ContextPath != "" {
		cfg.PathResolver = request.RequestURIResolver(s.ContextPath)
	}
	return cfg
}

// Level returns the slog level named by LogLevel, info by default.
func (s Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
