// Package config loads storage registry settings from YAML, JSON or HCL
// files and applies them to a storage.Registry.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tplkit/pkg/storage"
	"github.com/goliatone/go-tplkit/pkg/theme"
)

// ErrUnsupportedFormat is returned for files that are not YAML, JSON or HCL.
var ErrUnsupportedFormat = errors.New("config: unsupported config format")

// Config describes a storage registry.
type Config struct {
	BaseDir   string            `json:"base_dir" yaml:"base_dir" hcl:"base_dir,optional"`
	BaseURL   string            `json:"base_url" yaml:"base_url" hcl:"base_url,optional"`
	Extension string            `json:"extension,omitempty" yaml:"extension,omitempty" hcl:"extension,optional"`
	Storages  map[string]string `json:"storages,omitempty" yaml:"storages,omitempty" hcl:"storages,optional"`
	Theme     *ThemeConfig      `json:"theme,omitempty" yaml:"theme,omitempty" hcl:"theme,block"`
}

// ThemeConfig registers the templates/theme storage pair. Dir and URL locate
// the active theme.
type ThemeConfig struct {
	PluginFolder string `json:"plugin_folder" yaml:"plugin_folder" hcl:"plugin_folder"`
	ThemeFolder  string `json:"theme_folder" yaml:"theme_folder" hcl:"theme_folder"`
	Dir          string `json:"dir" yaml:"dir" hcl:"dir"`
	URL          string `json:"url,omitempty" yaml:"url,omitempty" hcl:"url,optional"`
}

// Load reads a config file, choosing the decoder from its extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return ParseHCL(data, path)
	case ".json", ".yaml", ".yml":
		return Parse(data, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Parse decodes JSON or YAML. source names the input in error messages.
func Parse(data []byte, source string) (*Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("config: file %s is empty", source)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = Config{}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}
	return finish(&cfg, source)
}

// ParseHCL decodes HCL. source names the input in diagnostics.
func ParseHCL(data []byte, source string) (*Config, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, source)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %w", source, diags)
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %w", source, diags)
	}
	return finish(&cfg, source)
}

func finish(cfg *Config, source string) (*Config, error) {
	cfg.expandEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", source, err)
	}
	return cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	for name := range c.Storages {
		if strings.TrimSpace(name) == "" {
			return errors.New("storage name is required")
		}
	}
	if c.Theme != nil {
		if strings.TrimSpace(c.Theme.PluginFolder) == "" {
			return errors.New("theme plugin_folder is required")
		}
		if strings.TrimSpace(c.Theme.Dir) == "" {
			return errors.New("theme dir is required")
		}
	}
	return nil
}

// Apply configures reg: base directory and URL first, then the theme
// override, then the named storages in sorted order. A storage clashing with
// an existing name returns the registry's duplicate error.
func (c *Config) Apply(reg *storage.Registry) error {
	if c.BaseDir != "" {
		reg.SetBaseDir(c.BaseDir)
	}
	if c.BaseURL != "" {
		reg.SetBaseURL(c.BaseURL)
	}

	if c.Theme != nil {
		reg.SetThemeLocator(theme.Static{Dir: c.Theme.Dir, URL: c.Theme.URL})
		if err := reg.RegisterThemeOverride(c.Theme.PluginFolder, c.Theme.ThemeFolder); err != nil {
			return fmt.Errorf("config: theme override: %w", err)
		}
	}

	names := make([]string, 0, len(c.Storages))
	for name := range c.Storages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := reg.Add(name, c.Storages[name]); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

func (c *Config) expandEnv() {
	c.BaseDir = os.ExpandEnv(c.BaseDir)
	c.BaseURL = os.ExpandEnv(c.BaseURL)
	for name, folder := range c.Storages {
		c.Storages[name] = os.ExpandEnv(folder)
	}
	if c.Theme != nil {
		c.Theme.Dir = os.ExpandEnv(c.Theme.Dir)
		c.Theme.URL = os.ExpandEnv(c.Theme.URL)
	}
}
