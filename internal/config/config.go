package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jeanpaul/zenmap/internal/kv"
	"github.com/jeanpaul/zenmap/internal/provider"
)

type Config struct {
	DataDir   string          `yaml:"data_dir" mapstructure:"data_dir"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Theme     string          `yaml:"theme" mapstructure:"theme"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-" mapstructure:"-"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	Path    string `yaml:"path" mapstructure:"path"`
}

type GeneratorConfig struct {
	Provider  string                    `yaml:"provider" mapstructure:"provider"`
	Providers map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
	Timeout   time.Duration             `yaml:"timeout" mapstructure:"timeout"`
}

type ProviderConfig struct {
	Type    string `yaml:"type" mapstructure:"type"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	Model   string `yaml:"model" mapstructure:"model"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func DefaultConfig() *Config {
	return &Config{
		DataDir: defaultDir(),
		Store:   StoreConfig{Backend: kv.BackendBolt},
		Generator: GeneratorConfig{
			Provider: "google",
			Timeout:  120 * time.Second,
			Providers: map[string]ProviderConfig{
				"google": {Type: provider.TypeGoogle, APIKey: "$GEMINI_API_KEY", Model: "gemini-2.5-flash"},
				"ollama": {Type: provider.TypeOpenAI, BaseURL: "http://localhost:11434/v1", Model: "qwen2.5:14b"},
			},
		},
		Log:   LogConfig{Level: "info", Format: "text"},
		Theme: "green",
	}
}

func defaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "zenmap")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "zenmap")
}

// Load reads config.yaml from path, or from the working directory and the
// zenmap config directories when path is empty. ZENMAP_* environment
// variables override file values (ZENMAP_STORE_BACKEND and so on).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(defaultDir())
	}

	v.SetEnvPrefix("ZENMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"data_dir", "store.backend", "store.path", "generator.provider", "generator.timeout", "log.level", "log.format", "log.file", "theme"} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path == "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Source = v.ConfigFileUsed()
	cfg.DataDir = expandEnv(cfg.DataDir)
	for name, p := range cfg.Generator.Providers {
		p.APIKey = expandEnv(p.APIKey)
		p.BaseURL = expandEnv(p.BaseURL)
		if p.Type == provider.TypeGoogle && (p.APIKey == "" || strings.HasPrefix(p.APIKey, "$")) {
			p.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
		}
		if p.Type == provider.TypeAnthropic && (p.APIKey == "" || strings.HasPrefix(p.APIKey, "$")) {
			p.APIKey = firstEnv("ANTHROPIC_API_KEY")
		}
		cfg.Generator.Providers[name] = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the configuration for errors. A missing API key is not
// one: generation reports it when it is attempted.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if !slices.Contains(kv.Backends, c.Store.Backend) {
		return fmt.Errorf("config: store.backend %q is invalid (must be one of %s)", c.Store.Backend, strings.Join(kv.Backends, ", "))
	}
	if c.Generator.Provider == "" {
		return fmt.Errorf("config: generator.provider is required")
	}
	if _, ok := c.Generator.Providers[c.Generator.Provider]; !ok {
		return fmt.Errorf("config: generator.provider %q not found in generator.providers", c.Generator.Provider)
	}
	validTypes := []string{provider.TypeGoogle, provider.TypeOpenAI, provider.TypeAnthropic}
	for name, p := range c.Generator.Providers {
		if !slices.Contains(validTypes, p.Type) {
			return fmt.Errorf("config: provider %q has invalid type %q (must be google, openai, or anthropic)", name, p.Type)
		}
		if p.Type == provider.TypeOpenAI && p.BaseURL == "" {
			return fmt.Errorf("config: provider %q (type openai) requires base_url", name)
		}
	}
	if c.Generator.Timeout <= 0 {
		c.Generator.Timeout = 120 * time.Second
	}
	return nil
}

// ProviderSettings returns the settings of the named provider, or of the
// selected one when name is empty.
func (c *Config) ProviderSettings(name string) (provider.Settings, error) {
	if name == "" {
		name = c.Generator.Provider
	}
	p, ok := c.Generator.Providers[name]
	if !ok {
		return provider.Settings{}, fmt.Errorf("unknown provider %q", name)
	}
	return provider.Settings{
		Name:    name,
		Type:    p.Type,
		BaseURL: p.BaseURL,
		APIKey:  p.APIKey,
		Model:   p.Model,
		Timeout: c.Generator.Timeout,
	}, nil
}

// StoreOptions resolves the substrate location inside DataDir.
func (c *Config) StoreOptions() kv.Options {
	path := c.Store.Path
	if path == "" {
		path = kv.DefaultPath(c.Store.Backend, c.DataDir)
	}
	return kv.Options{Backend: c.Store.Backend, Path: path}
}

// LogPath is where the TUI writes its log when none is configured.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "zenmap.log")
}

// Redacted renders the configuration as YAML with API keys masked.
func (c *Config) Redacted() (string, error) {
	cp := *c
	cp.Generator.Providers = make(map[string]ProviderConfig, len(c.Generator.Providers))
	for name, p := range c.Generator.Providers {
		if p.APIKey != "" {
			p.APIKey = mask(p.APIKey)
		}
		cp.Generator.Providers[name] = p
	}
	b, err := yaml.Marshal(cp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func mask(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
