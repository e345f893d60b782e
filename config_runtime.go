package fedcheck

import (
	"fmt"
	"time"

	"github.com/porthorian/fedcheck/pkg/audit"
	"github.com/porthorian/fedcheck/pkg/schema"
)

type MetricsBackend string

const (
	MetricsBackendNone       MetricsBackend = "none"
	MetricsBackendPrometheus MetricsBackend = "prometheus"
)

type RuntimeConfig struct {
	HTTP    HTTPConfig
	Metrics MetricsConfig
}

type HTTPConfig struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type MetricsConfig struct {
	Backend MetricsBackend
}

// initialize resolves defaults without mutating the caller's Config. The
// compiled schema set is built here once and shared by every dispatch.
func (c Config) initialize() (Config, error) {
	config := c
	config.Logger = resolveLogger(config.Logger)

	if config.Validator == nil {
		validator, err := schema.NewValidator()
		if err != nil {
			return Config{}, err
		}
		config.Validator = validator
	}

	if config.Auditor == nil {
		config.Auditor = audit.NewEngine()
	}

	if err := validateMetricsBackend(config.Runtime.Metrics.Backend); err != nil {
		return Config{}, err
	}

	config.Runtime.HTTP = resolveHTTPConfig(config.Runtime.HTTP)
	return config, nil
}

func resolveHTTPConfig(httpConfig HTTPConfig) HTTPConfig {
	if httpConfig.ListenAddress == "" {
		httpConfig.ListenAddress = ":8080"
	}
	if httpConfig.ReadTimeout <= 0 {
		httpConfig.ReadTimeout = 10 * time.Second
	}
	if httpConfig.WriteTimeout <= 0 {
		httpConfig.WriteTimeout = 10 * time.Second
	}
	if httpConfig.ShutdownTimeout <= 0 {
		httpConfig.ShutdownTimeout = 5 * time.Second
	}
	return httpConfig
}

func validateMetricsBackend(backend MetricsBackend) error {
	switch backend {
	case "", MetricsBackendNone, MetricsBackendPrometheus:
		return nil
	default:
		return fmt.Errorf("fedcheck config: unsupported runtime.metrics.backend %q", backend)
	}
}
