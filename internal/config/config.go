package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/alnah/go-nbsite/internal/fileutil"
	"github.com/alnah/go-nbsite/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrConfigInvalid   = errors.New("invalid config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// DefaultName is the config name looked up when none is given.
const DefaultName = "nbsite"

// appDir is the directory under os.UserConfigDir holding named configs.
const appDir = "nbsite"

// Field length limits.
const (
	MaxTitleLength   = 200
	MaxURLLength     = 2048
	MaxPathLength    = 4096
	MaxPatternLength = 256
	MaxArgLength     = 1024
	MaxArgs          = 64
	MaxMarkerLength  = 256
	MaxBucketLength  = 63 // S3 bucket name limit
	MaxPrefixLength  = 1024
	MaxRegionLength  = 64
)

// Config holds all configuration for a site build.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Export  ExportConfig  `yaml:"export"`
	Nav     NavConfig     `yaml:"nav"`
	Assets  AssetsConfig  `yaml:"assets"`
	Serve   ServeConfig   `yaml:"serve"`
	Verify  VerifyConfig  `yaml:"verify"`
	Publish PublishConfig `yaml:"publish"`
}

// SiteConfig defines titles and links shown on generated pages.
type SiteConfig struct {
	Title   string `yaml:"title"`
	RepoURL string `yaml:"repoURL"` // chooser heading link, empty = plain heading
}

// InputConfig defines where notebooks are discovered.
type InputConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
}

// OutputConfig defines the site output directory.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ExportConfig defines the external export tool.
type ExportConfig struct {
	Command     []string `yaml:"command"`     // base argv; source and -o <dir> are appended
	StrictNames bool     `yaml:"strictNames"` // fail on short name collisions
}

// NavConfig defines nav injection options.
type NavConfig struct {
	Marker string `yaml:"marker"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// ServeConfig defines the dev server.
type ServeConfig struct {
	Addr     string        `yaml:"addr"`
	Debounce time.Duration `yaml:"debounce"`
}

// VerifyConfig defines browser verification.
type VerifyConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Workers int           `yaml:"workers"` // 0 = auto
}

// PublishConfig defines the S3-compatible upload target.
// Credentials are read from the environment only.
type PublishConfig struct {
	Endpoint string `yaml:"endpoint"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	UseSSL   bool   `yaml:"useSSL"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Title:   "niivue examples",
			RepoURL: "https://github.com/neurolabusc/ipyniivue-marimo-test",
		},
		Input:  InputConfig{Dir: ".", Pattern: "marimo.*.py"},
		Output: OutputConfig{Dir: "dist"},
		Export: ExportConfig{
			Command: []string{"uv", "run", "marimo", "-y", "export", "html-wasm"},
		},
		Nav:     NavConfig{Marker: "<!-- MARIMO_NAV_INJECTED -->"},
		Serve:   ServeConfig{Addr: "127.0.0.1:8000", Debounce: 300 * time.Millisecond},
		Verify:  VerifyConfig{Timeout: 30 * time.Second},
		Publish: PublishConfig{UseSSL: true},
	}
}

// Validate checks field lengths and value ranges. Called by Load, but
// available for configs assembled from flags and environment.
func (c *Config) Validate() error {
	if err := c.validateLengths(); err != nil {
		return err
	}

	err := validation.Errors{
		"input": validation.ValidateStruct(&c.Input,
			validation.Field(&c.Input.Dir, validation.Required),
			validation.Field(&c.Input.Pattern, validation.Required, validation.By(validGlob)),
		),
		"output": validation.ValidateStruct(&c.Output,
			validation.Field(&c.Output.Dir, validation.Required),
		),
		"export": validation.ValidateStruct(&c.Export,
			validation.Field(&c.Export.Command, validation.Required, validation.Each(validation.Required)),
		),
		"nav": validation.ValidateStruct(&c.Nav,
			validation.Field(&c.Nav.Marker, validation.Required, validation.By(htmlComment)),
		),
		"site": validation.ValidateStruct(&c.Site,
			validation.Field(&c.Site.RepoURL, is.URL),
		),
		"serve": validation.ValidateStruct(&c.Serve,
			validation.Field(&c.Serve.Debounce, validation.Min(time.Duration(0)), validation.Max(time.Minute)),
		),
		"verify": validation.ValidateStruct(&c.Verify,
			validation.Field(&c.Verify.Timeout, validation.Min(time.Duration(0)), validation.Max(10*time.Minute)),
			validation.Field(&c.Verify.Workers, validation.Min(0), validation.Max(64)),
		),
		"publish": validation.ValidateStruct(&c.Publish,
			validation.Field(&c.Publish.Endpoint, validation.By(hostPort)),
			validation.Field(&c.Publish.Bucket, validation.Length(3, MaxBucketLength)),
		),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}

func (c *Config) validateLengths() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"site.title", c.Site.Title, MaxTitleLength},
		{"site.repoURL", c.Site.RepoURL, MaxURLLength},
		{"input.dir", c.Input.Dir, MaxPathLength},
		{"input.pattern", c.Input.Pattern, MaxPatternLength},
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"nav.marker", c.Nav.Marker, MaxMarkerLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"publish.endpoint", c.Publish.Endpoint, MaxURLLength},
		{"publish.prefix", c.Publish.Prefix, MaxPrefixLength},
		{"publish.region", c.Publish.Region, MaxRegionLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if len(c.Export.Command) > MaxArgs {
		return fmt.Errorf("%w: export.command (%d args, max %d)", ErrFieldTooLong, len(c.Export.Command), MaxArgs)
	}
	for i, arg := range c.Export.Command {
		if err := validateFieldLength(fmt.Sprintf("export.command[%d]", i), arg, MaxArgLength); err != nil {
			return err
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validGlob(value any) error {
	pattern, _ := value.(string)
	if _, err := filepath.Match(pattern, ""); err != nil {
		return errors.New("must be a valid glob pattern")
	}
	return nil
}

// hostPort accepts "host" or "host:port" without a URL scheme.
func hostPort(value any) error {
	endpoint, _ := value.(string)
	if endpoint == "" {
		return nil
	}
	if strings.Contains(endpoint, "://") {
		return errors.New("must be host[:port] without a scheme")
	}
	host := endpoint
	if h, _, err := net.SplitHostPort(endpoint); err == nil {
		host = h
	}
	return is.Host.Validate(host)
}

func htmlComment(value any) error {
	marker, _ := value.(string)
	if !strings.HasPrefix(marker, "<!--") || !strings.HasSuffix(marker, "-->") {
		return errors.New("must be an HTML comment")
	}
	return nil
}

// Load reads a config by name or path on top of DefaultConfig.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise it's a config name searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func Load(nameOrPath string) (*Config, string, error) {
	if nameOrPath == "" {
		return nil, "", ErrEmptyConfigName
	}

	var configPath string
	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, "", err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, "", fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.Decode(data, cfg, yamlutil.DecodeOptions{Strict: true, ExpandEnv: true}); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

// LoadDefault loads DefaultName from the working directory when present and
// returns DefaultConfig otherwise. The returned path is empty without a file.
func LoadDefault() (*Config, string, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		if fileutil.FileExists(DefaultName + ext) {
			return Load(DefaultName + ext)
		}
	}
	return DefaultConfig(), "", nil
}

// Encode returns cfg as YAML.
func Encode(cfg *Config) ([]byte, error) {
	return yamlutil.Encode(cfg)
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// SearchPaths returns the candidate files for a config name, in lookup order:
// current directory, then the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, appDir, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
