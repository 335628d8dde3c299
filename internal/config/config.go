// Package config loads the service configuration from the environment.
//
// Every setting has a default. Values that fail to parse fall back to their
// default, and the assembled Config is then normalized and validated as a
// whole, so Load reports every problem at once.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CORSConfig lists the browser origins allowed to call the API. Empty means
// any origin.
type CORSConfig struct {
	AllowedOrigins []string // CORS_ALLOWED_ORIGINS, comma separated
}

// SecurityConfig controls Strict-Transport-Security.
type SecurityConfig struct {
	EnableHSTS bool          // ENABLE_HSTS
	HSTSMaxAge time.Duration // HSTS_MAX_AGE
}

// OTELConfig controls trace export.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT, host:port of the gRPC collector
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG, in [0,1]
}

// Config is the complete runtime configuration.
type Config struct {
	Port              string // PORT
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug, release or test

	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string // always starts with "/", never ends with one unless root

	// Verbose attaches the debug block to 500 responses (API_VERBOSE_ERRORS).
	// Unset, it follows GinMode: on in debug, off otherwise.
	Verbose     bool
	GzipEnabled bool

	DBPath string // SQLite file; ":memory:" and file: DSNs work too

	RateRPS   float64 // per caller, 0 allows only the burst
	RateBurst int

	CORS     CORSConfig
	Security SecurityConfig
	OTEL     OTELConfig
}

// Addr is the listen address for net/http.
func (c Config) Addr() string { return ":" + c.Port }

// MustLoad is Load for callers that cannot continue without a config.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads, normalizes and validates the configuration.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", time.Minute),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           getenv("GIN_MODE", "release"),

		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		GzipEnabled: getbool("GZIP_ENABLED", false),

		DBPath: getenv("DB_PATH", "app.db"),

		RateRPS:   getfloat("RATE_RPS", 5),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-api-base"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}
	cfg.normalize()
	cfg.Verbose = getbool("API_VERBOSE_ERRORS", cfg.GinMode == "debug")
	return cfg, cfg.validate()
}

func (c *Config) normalize() {
	c.GinMode = strings.ToLower(c.GinMode)
	if !slices.Contains(ginModes, c.GinMode) {
		c.GinMode = "release"
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
}

var (
	ginModes  = []string{"debug", "release", "test"}
	logLevels = []string{"debug", "info", "warn", "error", "fatal", "panic"}
)

// validate returns all violations joined, or nil.
func (c Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(slices.Contains(logLevels, c.LogLevel), "LOG_LEVEL must be one of: %s", strings.Join(logLevels, ", "))
	check(strings.TrimSpace(c.Port) != "", "PORT must not be empty")
	check(c.ReadTimeout > 0 && c.ReadHeaderTimeout > 0 && c.WriteTimeout > 0 && c.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")
	check(strings.TrimSpace(c.DBPath) != "", "DB_PATH must not be empty")
	check(c.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(c.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	check(!c.OTEL.Enabled || strings.TrimSpace(c.OTEL.Endpoint) != "",
		"OTEL_EXPORTER_OTLP_ENDPOINT must be set when OTEL_ENABLED")

	return errors.Join(errs...)
}

// env returns the parsed value of k, or def when k is unset, empty or
// unparsable.
func env[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func getenv(k, def string) string {
	return env(k, def, func(s string) (string, error) { return s, nil })
}

func getint(k string, def int) int { return env(k, def, strconv.Atoi) }

func getdur(k string, def time.Duration) time.Duration { return env(k, def, time.ParseDuration) }

func getfloat(k string, def float64) float64 {
	return env(k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

var errNotBool = errors.New("not a boolean")

func getbool(k string, def bool) bool {
	return env(k, def, func(s string) (bool, error) {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return false, errNotBool
	})
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath forces a leading slash and drops trailing ones; blank
// input means root.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
