package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/civitas/internal/config"
)

// Config holds observability settings. OTEL_* variables follow the
// OpenTelemetry naming so a stock collector setup works unchanged.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	out := Config{
		ServiceName:          strings.TrimSpace(cfg.AppName),
		Environment:          envOr("DEPLOYMENT_ENV", cfg.Environment),
		Version:              envOr("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:             strings.ToLower(envOr("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(envOr("LOG_FORMAT", "json")),
		OtelEnabled:          false,
		OtelExporterEndpoint: envOr("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OtelExporterProtocol: strings.ToLower(envOr("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		OtelSamplingRatio:    0.1,
	}
	if out.ServiceName == "" {
		out.ServiceName = "civitas"
	}
	if v, err := strconv.ParseBool(envOr("OTEL_ENABLED", "false")); err == nil {
		out.OtelEnabled = v
	}
	if v, err := strconv.ParseFloat(envOr("OTEL_SAMPLING_RATIO", ""), 64); err == nil {
		out.OtelSamplingRatio = v
	}
	return out
}

func (c Config) Debug() bool {
	if strings.EqualFold(c.LogLevel, "debug") {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func envOr(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return strings.TrimSpace(def)
}
