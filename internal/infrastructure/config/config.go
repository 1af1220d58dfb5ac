// Package config loads hybrid-ai settings from the user config directory, a
// project override file and HYBRID_AI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	appName           = "hybrid-ai"
	envPrefix         = "HYBRID_AI"
	projectConfigName = ".hybrid-ai.yaml"
)

// Config is the immutable process configuration.
type Config struct {
	Complexity  ComplexityConfig  `mapstructure:"complexity" yaml:"complexity"`
	Local       LocalConfig       `mapstructure:"local" yaml:"local"`
	Aggregator  AggregatorConfig  `mapstructure:"aggregator" yaml:"aggregator"`
	Remote      RemoteConfig      `mapstructure:"remote" yaml:"remote"`
	Timeouts    TimeoutsConfig    `mapstructure:"timeouts" yaml:"timeouts"`
	Resilience  ResilienceConfig  `mapstructure:"resilience" yaml:"resilience"`
	Progress    ProgressConfig    `mapstructure:"progress" yaml:"progress"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// ComplexityConfig holds the classifier thresholds (in characters) and the
// human-readable level descriptions.
type ComplexityConfig struct {
	LowMax       int                    `mapstructure:"low_max" yaml:"low_max"`
	MediumMax    int                    `mapstructure:"medium_max" yaml:"medium_max"`
	Descriptions ComplexityDescriptions `mapstructure:"descriptions" yaml:"descriptions"`
}

type ComplexityDescriptions struct {
	Low    string `mapstructure:"low" yaml:"low"`
	Medium string `mapstructure:"medium" yaml:"medium"`
	High   string `mapstructure:"high" yaml:"high"`
}

// LocalConfig configures the local model server.
type LocalConfig struct {
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	DefaultModel string `mapstructure:"default_model" yaml:"default_model"`
	// AutoSelect picks the local executor model by task type in
	// collaborative runs.
	AutoSelect bool `mapstructure:"auto_select" yaml:"auto_select"`
}

// AggregatorConfig configures the OpenRouter-compatible aggregator.
type AggregatorConfig struct {
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	DefaultModel string `mapstructure:"default_model" yaml:"default_model"`
	StrongModel  string `mapstructure:"strong_model" yaml:"strong_model"`
}

// RemoteConfig configures the direct cloud APIs.
type RemoteConfig struct {
	DefaultModel     string `mapstructure:"default_model" yaml:"default_model"`
	GeminiBaseURL    string `mapstructure:"gemini_base_url" yaml:"gemini_base_url"`
	QwenBaseURL      string `mapstructure:"qwen_base_url" yaml:"qwen_base_url"`
	AnthropicBaseURL string `mapstructure:"anthropic_base_url" yaml:"anthropic_base_url"`
}

type TimeoutsConfig struct {
	Call  time.Duration `mapstructure:"call" yaml:"call"`
	Tests time.Duration `mapstructure:"tests" yaml:"tests"`
}

type ResilienceConfig struct {
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

type ProgressConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// CredentialsConfig names the two key files consulted after the
// environment.
type CredentialsConfig struct {
	LocalFile  string `mapstructure:"local_file" yaml:"local_file"`
	GlobalFile string `mapstructure:"global_file" yaml:"global_file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// Format is "console", "json" or "auto" (console on a terminal).
	Format string `mapstructure:"format" yaml:"format"`
}

// Options control where Load looks.
type Options struct {
	// ConfigFile, when set, replaces the user config file.
	ConfigFile string
	// UserDir overrides the user config directory.
	UserDir string
	// ProjectDir is where the search for .hybrid-ai.yaml starts. Empty means
	// the working directory.
	ProjectDir string
}

// legacyEnv maps config keys to the environment variables the tool has
// always honoured, after their HYBRID_AI_* names.
var legacyEnv = map[string]string{
	"local.base_url":           "LOCAL_AI_BASE_URL",
	"local.default_model":      "DEFAULT_LOCAL_MODEL",
	"remote.default_model":     "DEFAULT_REMOTE_MODEL",
	"aggregator.default_model": "DEFAULT_OPENROUTER_MODEL",
}

// Load reads configuration. Precedence, highest first: environment, project
// file, user file, defaults.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", opts.ConfigFile, err)
		}
	} else {
		userDir := opts.UserDir
		if userDir == "" {
			userDir = UserConfigDir()
		}
		v.SetConfigName("config")
		v.AddConfigPath(userDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading user config: %w", err)
			}
		}
	}

	if project := findProjectConfig(opts.ProjectDir); project != "" {
		pv := viper.New()
		pv.SetConfigFile(project)
		if err := pv.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", project, err)
		}
		if err := v.MergeConfigMap(pv.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Credentials.LocalFile = expandHome(cfg.Credentials.LocalFile)
	cfg.Credentials.GlobalFile = expandHome(cfg.Credentials.GlobalFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the router cannot work with.
func (c *Config) Validate() error {
	var problems []string
	if c.Complexity.LowMax < 0 || c.Complexity.MediumMax < 0 {
		problems = append(problems, "complexity thresholds must not be negative")
	}
	if c.Timeouts.Call <= 0 {
		problems = append(problems, "timeouts.call must be positive")
	}
	if c.Timeouts.Tests <= 0 {
		problems = append(problems, "timeouts.tests must be positive")
	}
	if c.Resilience.MaxRetries < 0 {
		problems = append(problems, "resilience.max_retries must not be negative")
	}
	if c.Progress.Interval <= 0 {
		problems = append(problems, "progress.interval must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// YAML renders the configuration in config file form.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// WriteStarter writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteStarter(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	data, err := defaults().YAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := defaults()
	cfg.Credentials.LocalFile = expandHome(cfg.Credentials.LocalFile)
	cfg.Credentials.GlobalFile = expandHome(cfg.Credentials.GlobalFile)
	return cfg
}

// defaults keeps "~" in paths so the starter file stays portable.
func defaults() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("complexity.low_max", 50)
	v.SetDefault("complexity.medium_max", 200)
	v.SetDefault("complexity.descriptions.low", "Simple queries and code snippets")
	v.SetDefault("complexity.descriptions.medium", "Moderate tasks requiring some reasoning")
	v.SetDefault("complexity.descriptions.high", "Complex tasks requiring deep analysis")

	v.SetDefault("local.base_url", "http://localhost:11434")
	v.SetDefault("local.default_model", "smollm2:1.7b")
	v.SetDefault("local.auto_select", true)

	v.SetDefault("aggregator.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("aggregator.default_model", "mistralai/mistral-7b-instruct-v0.2")
	v.SetDefault("aggregator.strong_model", "meta-llama/llama-3-70b-instruct")

	v.SetDefault("remote.default_model", "gemini-pro")
	v.SetDefault("remote.gemini_base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("remote.qwen_base_url", "https://dashscope.aliyuncs.com/api/v1")
	v.SetDefault("remote.anthropic_base_url", "")

	v.SetDefault("timeouts.call", "120s")
	v.SetDefault("timeouts.tests", "30s")

	v.SetDefault("resilience.max_retries", 0)
	v.SetDefault("resilience.retry_delay", "1s")

	v.SetDefault("progress.enabled", true)
	v.SetDefault("progress.interval", "10s")

	v.SetDefault("credentials.local_file", ".env")
	v.SetDefault("credentials.global_file", "~/.hybrid-ai-config")

	v.SetDefault("server.addr", "127.0.0.1:3000")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "auto")
}

// UserConfigDir returns $XDG_CONFIG_HOME/hybrid-ai or ~/.config/hybrid-ai.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// UserConfigPath is the file `config init` writes.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

// findProjectConfig walks up from start looking for .hybrid-ai.yaml.
func findProjectConfig(start string) string {
	dir := start
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}
	for {
		path := filepath.Join(dir, projectConfigName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
