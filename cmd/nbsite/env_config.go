package main

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-nbsite/internal/config"
)

const envPrefix = "NBSITE_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // NBSITE_CONFIG: config name or path
	InputDir   string        // NBSITE_INPUT_DIR
	Pattern    string        // NBSITE_PATTERN
	OutputDir  string        // NBSITE_OUTPUT_DIR
	SiteTitle  string        // NBSITE_SITE_TITLE
	ExportCmd  []string      // NBSITE_EXPORT_CMD: space separated argv
	ServeAddr  string        // NBSITE_SERVE_ADDR
	Timeout    time.Duration // NBSITE_VERIFY_TIMEOUT
	Workers    int           // NBSITE_WORKERS

	S3Endpoint  string // NBSITE_S3_ENDPOINT
	S3Bucket    string // NBSITE_S3_BUCKET
	S3Prefix    string // NBSITE_S3_PREFIX
	S3Region    string // NBSITE_S3_REGION
	S3AccessKey string // NBSITE_S3_ACCESS_KEY
	S3SecretKey string // NBSITE_S3_SECRET_KEY
}

// knownEnvVars lists valid NBSITE_* environment variables.
var knownEnvVars = map[string]bool{
	"NBSITE_CONFIG":         true,
	"NBSITE_INPUT_DIR":      true,
	"NBSITE_PATTERN":        true,
	"NBSITE_OUTPUT_DIR":     true,
	"NBSITE_SITE_TITLE":     true,
	"NBSITE_EXPORT_CMD":     true,
	"NBSITE_SERVE_ADDR":     true,
	"NBSITE_VERIFY_TIMEOUT": true,
	"NBSITE_WORKERS":        true,
	"NBSITE_S3_ENDPOINT":    true,
	"NBSITE_S3_BUCKET":      true,
	"NBSITE_S3_PREFIX":      true,
	"NBSITE_S3_REGION":      true,
	"NBSITE_S3_ACCESS_KEY":  true,
	"NBSITE_S3_SECRET_KEY":  true,
}

// loadEnvConfig reads every recognized NBSITE_* value through getenv.
// Malformed numbers and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:  getenv("NBSITE_CONFIG"),
		InputDir:    getenv("NBSITE_INPUT_DIR"),
		Pattern:     getenv("NBSITE_PATTERN"),
		OutputDir:   getenv("NBSITE_OUTPUT_DIR"),
		SiteTitle:   getenv("NBSITE_SITE_TITLE"),
		ExportCmd:   strings.Fields(getenv("NBSITE_EXPORT_CMD")),
		ServeAddr:   getenv("NBSITE_SERVE_ADDR"),
		S3Endpoint:  getenv("NBSITE_S3_ENDPOINT"),
		S3Bucket:    getenv("NBSITE_S3_BUCKET"),
		S3Prefix:    getenv("NBSITE_S3_PREFIX"),
		S3Region:    getenv("NBSITE_S3_REGION"),
		S3AccessKey: getenv("NBSITE_S3_ACCESS_KEY"),
		S3SecretKey: getenv("NBSITE_S3_SECRET_KEY"),
	}

	if timeout := getenv("NBSITE_VERIFY_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := getenv("NBSITE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	return cfg
}

// warnUnknownEnvVars logs a warning for each unrecognized NBSITE_* variable.
func warnUnknownEnvVars(environ []string, logger *zap.Logger) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			logger.Warn("unknown environment variable " + name + " (typo?)")
		}
	}
}

// applyEnvConfig overrides cfg with every variable that is set.
// CLI flags are applied afterwards, so flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString(&cfg.Input.Dir, env.InputDir)
	setString(&cfg.Input.Pattern, env.Pattern)
	setString(&cfg.Output.Dir, env.OutputDir)
	setString(&cfg.Site.Title, env.SiteTitle)
	setString(&cfg.Serve.Addr, env.ServeAddr)
	if len(env.ExportCmd) > 0 {
		cfg.Export.Command = env.ExportCmd
	}
	if env.Timeout > 0 {
		cfg.Verify.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Verify.Workers = env.Workers
	}

	setString(&cfg.Publish.Endpoint, env.S3Endpoint)
	setString(&cfg.Publish.Bucket, env.S3Bucket)
	setString(&cfg.Publish.Prefix, env.S3Prefix)
	setString(&cfg.Publish.Region, env.S3Region)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
