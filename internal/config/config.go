package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sink names accepted by MISE_ACTIVITY_SINK.
const (
	SinkSQLite  = "sqlite"
	SinkWebhook = "webhook"
)

type Config struct {
	Environment   string
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
	Activity      ActivityConfig
	Sink          SinkConfig
	Collector     CollectorConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Path          string
	LogTiming     bool
	RetentionDays int
}

type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVer        string
	SamplingRatio     float64
	MetricsConsole    bool
}

// ActivityConfig tunes the activity tracker.
type ActivityConfig struct {
	BatchSize             int
	FlushIntervalMS       int
	RequeueCeilingFactor  int
	StatsIntervalSeconds  int
	WatchProcessLifecycle bool
}

// SinkConfig selects where flushed batches go.
type SinkConfig struct {
	Kind      string
	Endpoint  string
	Token     string
	Secret    string
	Source    string
	TimeoutMS int
}

// CollectorConfig enables the inbound activity webhook.
type CollectorConfig struct {
	Token     string
	Secret    string
	RateLimit float64
	Burst     int
}

// Enabled reports whether the collector endpoint should be mounted.
func (c CollectorConfig) Enabled() bool {
	return c.Token != "" && c.Secret != ""
}

func Load() (Config, error) {
	return load(true)
}

// LoadForTool loads config for CLI tools that do not verify access tokens.
func LoadForTool() (Config, error) {
	return load(false)
}

func load(requireJWTSecret bool) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("mise_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("mise_port", 7420)
	v.SetDefault("mise_db_path", "data/mise")
	v.SetDefault("mise_db_timing", false)
	v.SetDefault("mise_db_retention_days", 0)
	v.SetDefault("mise_auth_jwt_secret", "")
	v.SetDefault("mise_auth_jwt_issuer", "")
	v.SetDefault("mise_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "mise")
	v.SetDefault("mise_service_name", "mise")
	v.SetDefault("mise_version", "dev")
	v.SetDefault("otel_service_version", "")
	v.SetDefault("mise_otel_sampling_ratio", 1.0)
	v.SetDefault("mise_otel_metrics_console", false)
	v.SetDefault("mise_activity_batch_size", 10)
	v.SetDefault("mise_activity_flush_interval_ms", 5000)
	v.SetDefault("mise_activity_requeue_ceiling_factor", 3)
	v.SetDefault("mise_activity_stats_interval_s", 60)
	v.SetDefault("mise_activity_watch_process", true)
	v.SetDefault("mise_activity_sink", SinkSQLite)
	v.SetDefault("mise_sink_endpoint", "")
	v.SetDefault("mise_sink_token", "")
	v.SetDefault("mise_sink_secret", "")
	v.SetDefault("mise_event_source", "mise/app")
	v.SetDefault("mise_sink_timeout_ms", 10000)
	v.SetDefault("mise_collector_token", "")
	v.SetDefault("mise_collector_secret", "")
	v.SetDefault("mise_collector_rate_limit", 50.0)
	v.SetDefault("mise_collector_burst", 100)

	env := resolveEnvironment(v)
	port := v.GetInt("mise_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid MISE_PORT: %d", port)
	}

	samplingRatio := v.GetFloat64("mise_otel_sampling_ratio")
	if samplingRatio < 0 {
		samplingRatio = 0
	}
	if samplingRatio > 1 {
		samplingRatio = 1
	}

	batchSize := clampInt(v.GetInt("mise_activity_batch_size"), 10, 1, 500)
	flushInterval := clampInt(v.GetInt("mise_activity_flush_interval_ms"), 5000, 100, 600000)
	ceilingFactor := clampInt(v.GetInt("mise_activity_requeue_ceiling_factor"), 3, 1, 100)
	statsInterval := clampInt(v.GetInt("mise_activity_stats_interval_s"), 60, 5, 3600)
	sinkTimeout := clampInt(v.GetInt("mise_sink_timeout_ms"), 10000, 100, 120000)

	sinkKind := strings.ToLower(strings.TrimSpace(v.GetString("mise_activity_sink")))
	switch sinkKind {
	case "":
		sinkKind = SinkSQLite
	case SinkSQLite, SinkWebhook:
	default:
		return Config{}, fmt.Errorf("invalid MISE_ACTIVITY_SINK: %q", sinkKind)
	}

	serviceName := strings.TrimSpace(v.GetString("otel_service_name"))
	if serviceName == "" {
		serviceName = strings.TrimSpace(v.GetString("mise_service_name"))
	}
	if serviceName == "" {
		serviceName = "mise"
	}

	serviceVersion := strings.TrimSpace(v.GetString("mise_version"))
	if serviceVersion == "" {
		serviceVersion = strings.TrimSpace(v.GetString("otel_service_version"))
	}
	if serviceVersion == "" {
		serviceVersion = "dev"
	}

	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	otlpCommonHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_headers"))
	otlpTraceHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_traces_headers"))
	otlpMetricHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_metrics_headers"))
	metricsConsole := v.GetBool("mise_otel_metrics_console")
	otelEnabled := v.GetBool("mise_otel_enabled") || otlpEndpoint != "" || metricsConsole
	traceHeaders := mergeHeaderMaps(otlpCommonHeaders, otlpTraceHeaders)
	metricHeaders := mergeHeaderMaps(otlpCommonHeaders, otlpMetricHeaders)

	cfg := Config{
		Environment: env,
		Server:      ServerConfig{Port: port},
		Database: DatabaseConfig{
			Path:          strings.TrimSpace(v.GetString("mise_db_path")),
			LogTiming:     v.GetBool("mise_db_timing"),
			RetentionDays: clampInt(v.GetInt("mise_db_retention_days"), 0, 0, 3650),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(v.GetString("mise_auth_jwt_secret")),
			JWTIssuer: strings.TrimSpace(v.GetString("mise_auth_jwt_issuer")),
		},
		Observability: ObservabilityConfig{
			Enabled:           otelEnabled,
			OTLPEndpoint:      otlpEndpoint,
			OTLPTraceHeaders:  traceHeaders,
			OTLPMetricHeaders: metricHeaders,
			ServiceName:       serviceName,
			ServiceVer:        serviceVersion,
			SamplingRatio:     samplingRatio,
			MetricsConsole:    metricsConsole,
		},
		Activity: ActivityConfig{
			BatchSize:             batchSize,
			FlushIntervalMS:       flushInterval,
			RequeueCeilingFactor:  ceilingFactor,
			StatsIntervalSeconds:  statsInterval,
			WatchProcessLifecycle: v.GetBool("mise_activity_watch_process"),
		},
		Sink: SinkConfig{
			Kind:      sinkKind,
			Endpoint:  strings.TrimSpace(v.GetString("mise_sink_endpoint")),
			Token:     strings.TrimSpace(v.GetString("mise_sink_token")),
			Secret:    strings.TrimSpace(v.GetString("mise_sink_secret")),
			Source:    strings.TrimSpace(v.GetString("mise_event_source")),
			TimeoutMS: sinkTimeout,
		},
		Collector: CollectorConfig{
			Token:     strings.TrimSpace(v.GetString("mise_collector_token")),
			Secret:    strings.TrimSpace(v.GetString("mise_collector_secret")),
			RateLimit: max(v.GetFloat64("mise_collector_rate_limit"), 0),
			Burst:     clampInt(v.GetInt("mise_collector_burst"), 100, 1, 10000),
		},
	}

	if strings.TrimSpace(cfg.Database.Path) == "" {
		cfg.Database.Path = "data/mise"
	}
	if cfg.Sink.Kind == SinkWebhook && (cfg.Sink.Endpoint == "" || cfg.Sink.Token == "" || cfg.Sink.Secret == "") {
		return Config{}, fmt.Errorf("MISE_SINK_ENDPOINT, MISE_SINK_TOKEN and MISE_SINK_SECRET are required for the webhook sink")
	}
	if (cfg.Collector.Token == "") != (cfg.Collector.Secret == "") {
		return Config{}, fmt.Errorf("MISE_COLLECTOR_TOKEN and MISE_COLLECTOR_SECRET must be set together")
	}
	if requireJWTSecret && !cfg.IsLocalDevelopment() && cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("MISE_AUTH_JWT_SECRET is required outside local/dev environments")
	}
	if cfg.IsLocalDevelopment() && cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "mise-local-dev"
	}

	return cfg, nil
}

func clampInt(value, fallback, minValue, maxValue int) int {
	if value <= 0 {
		value = fallback
	}
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}

func parseOTLPHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pair := strings.SplitN(part, "=", 2)
		if len(pair) != 2 {
			continue
		}
		key := strings.TrimSpace(pair[0])
		value := strings.TrimSpace(pair[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

func (c Config) ActivityFlushInterval() time.Duration {
	return time.Duration(c.Activity.FlushIntervalMS) * time.Millisecond
}

func (c Config) ActivityStatsInterval() time.Duration {
	return time.Duration(c.Activity.StatsIntervalSeconds) * time.Second
}

// ActivityRetention is how long stored activity is kept; zero keeps it forever.
func (c Config) ActivityRetention() time.Duration {
	return time.Duration(c.Database.RetentionDays) * 24 * time.Hour
}

func (c Config) SinkTimeout() time.Duration {
	return time.Duration(c.Sink.TimeoutMS) * time.Millisecond
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"mise_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
