package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the project configuration file looked up by default.
const DefaultPath = "texbuilder.yaml"

// DefaultImage is the container image carrying a full TeX distribution.
const DefaultImage = "texlive/texlive:latest-full"

// ToolchainMode selects where external TeX tools run.
type ToolchainMode string

const (
	ModeDocker ToolchainMode = "docker"
	ModeLocal  ToolchainMode = "local"
)

// Config represents the project configuration
type Config struct {
	Document  DocumentConfig  `yaml:"document"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Watch     WatchConfig     `yaml:"watch"`
	Lint      LintConfig      `yaml:"lint"`
	Test      TestConfig      `yaml:"test"`
	Clean     CleanConfig     `yaml:"clean"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Source is the file the configuration was read from; empty when defaults were used.
	Source string `yaml:"-"`
}

// DocumentConfig locates the document entry point and its build output.
type DocumentConfig struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
}

// ToolchainConfig describes how the TeX toolchain is invoked.
type ToolchainConfig struct {
	Mode      ToolchainMode `yaml:"mode"`
	Image     string        `yaml:"image"`
	MaxPasses int           `yaml:"max_passes"` // latexmk $max_repeat
	Workdir   string        `yaml:"workdir,omitempty"`
}

// WatchConfig tunes the rebuild-on-change loop.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Dirs         []string      `yaml:"dirs"`
	Extensions   []string      `yaml:"extensions"`
	InitialBuild *bool         `yaml:"initial_build,omitempty"`
}

// LintConfig configures chktex/lacheck runs.
type LintConfig struct {
	ChktexVerbosity *int `yaml:"chktex_verbosity,omitempty"`
	Lacheck         bool `yaml:"lacheck"`
}

// DefaultChktexVerbosity is used when lint.chktex_verbosity is absent.
const DefaultChktexVerbosity = 1

// Verbosity returns the chktex -v level. An explicit 0 is kept.
func (l LintConfig) Verbosity() int {
	if l.ChktexVerbosity == nil {
		return DefaultChktexVerbosity
	}
	return *l.ChktexVerbosity
}

// TestConfig configures the toolchain self-test.
type TestConfig struct {
	Document string `yaml:"document"`
}

// CleanConfig lists generated file extensions removed by clean.
type CleanConfig struct {
	Extensions []string `yaml:"extensions"`
	Keep       []string `yaml:"keep"`
}

// LoggingConfig selects the slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// InitialBuildEnabled reports whether watch mode builds once on start.
func (w WatchConfig) InitialBuildEnabled() bool {
	return w.InitialBuild == nil || *w.InitialBuild
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads configuration from the specified file. A missing file is not an
// error: the defaults describe the conventional template layout.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	if configPath == "" {
		configPath = DefaultPath
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		slog.Debug("Configuration file not found, using defaults", "path", configPath)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	cfg.Source = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Document.Source == "" {
		cfg.Document.Source = "src/main.tex"
	}
	if cfg.Document.Output == "" {
		cfg.Document.Output = "build"
	}
	if cfg.Toolchain.Mode == "" {
		cfg.Toolchain.Mode = ModeDocker
	}
	if cfg.Toolchain.Image == "" {
		cfg.Toolchain.Image = DefaultImage
	}
	if cfg.Toolchain.MaxPasses == 0 {
		cfg.Toolchain.MaxPasses = 5
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = time.Second
	}
	if cfg.Watch.MaxDelay == 0 {
		cfg.Watch.MaxDelay = 10 * time.Second
	}
	if len(cfg.Watch.Dirs) == 0 {
		cfg.Watch.Dirs = []string{"src", "styles", "assets"}
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = []string{".tex", ".bib", ".sty", ".cls"}
	}
	if cfg.Test.Document == "" {
		cfg.Test.Document = "tests/test_document.tex"
	}
	if len(cfg.Clean.Extensions) == 0 {
		cfg.Clean.Extensions = append([]string(nil), DefaultCleanExtensions...)
	}
	if len(cfg.Clean.Keep) == 0 {
		cfg.Clean.Keep = []string{".gitkeep"}
	}
	cfg.Logging.Level = string(NormalizeLogLevel(cfg.Logging.Level))
	cfg.Logging.Format = string(NormalizeLogFormat(cfg.Logging.Format))
}

// DefaultCleanExtensions is the set of files the TeX toolchain generates next
// to or inside the output directory.
var DefaultCleanExtensions = []string{
	".aux", ".bbl", ".bcf", ".blg", ".fdb_latexmk", ".fls",
	".log", ".out", ".run.xml", ".synctex.gz", ".toc",
	".lof", ".lot", ".nav", ".snm", ".vrb", ".idx",
	".ilg", ".ind", ".glo", ".gls", ".glg", ".acn",
	".acr", ".alg",
}
