package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultOutputPath is where the synthesized System module is written,
// relative to the project root.
const DefaultOutputPath = "src/sys_mod_output_testing.rs"

// Config is the top-level configuration for ironcoder
type Config struct {
	// BoardsDir is the root of the board catalog (manufacturer/board/manifest.toml)
	BoardsDir string `json:"boardsDir,omitempty"`

	// Catalog controls which manifest files are loaded from BoardsDir
	Catalog CatalogConfig `json:"catalog,omitempty"`

	// Output controls where generated code is written
	Output OutputConfig `json:"output,omitempty"`

	// Toolchain configures the external build/flash commands
	Toolchain ToolchainConfig `json:"toolchain,omitempty"`

	// Log configures the application logger
	Log LogConfig `json:"log,omitempty"`

	// Timing enables per-stage timing output for code generation
	Timing TimingConfig `json:"timing,omitempty"`

	// Policy contains system rule configuration
	Policy PolicyConfig `json:"policy,omitempty"`
}

// CatalogConfig selects board manifests
type CatalogConfig struct {
	// Manifests is a list of glob patterns, relative to BoardsDir
	Manifests []string `json:"manifests,omitempty"`

	// Exclude is a list of glob patterns to drop from the catalog
	Exclude []string `json:"exclude,omitempty"`
}

// OutputConfig controls generated file locations
type OutputConfig struct {
	// Path of the System module, relative to the project root
	Path string `json:"path,omitempty"`
}

// ToolchainConfig configures the external toolchain
type ToolchainConfig struct {
	// Cargo is the cargo executable (name or path)
	Cargo string `json:"cargo,omitempty"`

	// BuildArgs are appended after `-Z unstable-options -C <project>`
	BuildArgs []string `json:"buildArgs,omitempty"`

	// FlashArgs are appended after `-Z unstable-options -C <project>`
	FlashArgs []string `json:"flashArgs,omitempty"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error"
	Level string `json:"level,omitempty"`

	// Format is "console" or "json"
	Format string `json:"format,omitempty"`
}

// TimingConfig controls the JSONL timing recorder
type TimingConfig struct {
	Enabled bool `json:"enabled,omitempty"`

	// Path of the JSONL file (relative to the project root if not absolute)
	Path string `json:"path,omitempty"`
}

// PolicyConfig contains system rule configuration
type PolicyConfig struct {
	// Rules maps rule names to severity: "off", "info", "warning", "error"
	Rules map[string]string `json:"rules,omitempty"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		BoardsDir: "iron-coder-boards",
		Catalog: CatalogConfig{
			Manifests: []string{"*/*/*.toml"},
			Exclude:   []string{},
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
		Toolchain: ToolchainConfig{
			Cargo:     "cargo",
			BuildArgs: []string{"build"},
			FlashArgs: []string{"run"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Timing: TimingConfig{
			Enabled: false,
			Path:    "timing.jsonl",
		},
		Policy: PolicyConfig{
			Rules: map[string]string{},
		},
	}
}

// Load finds and loads the configuration file
// Search order:
//  1. ./ironcoder.json (current working directory)
//  2. ./.ironcoder.json (current working directory)
//  3. <rootPath>/ironcoder.json (if different from cwd)
//  4. ~/.config/ironcoder/config.json
//
// Returns DefaultConfig if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "ironcoder.json"),
		filepath.Join(cwd, ".ironcoder.json"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "ironcoder.json"),
				filepath.Join(rootPath, ".ironcoder.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "ironcoder", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.BoardsDir == "" {
		c.BoardsDir = def.BoardsDir
	}
	if len(c.Catalog.Manifests) == 0 {
		c.Catalog.Manifests = def.Catalog.Manifests
	}
	if c.Output.Path == "" {
		c.Output.Path = def.Output.Path
	}
	if c.Toolchain.Cargo == "" {
		c.Toolchain.Cargo = def.Toolchain.Cargo
	}
	if len(c.Toolchain.BuildArgs) == 0 {
		c.Toolchain.BuildArgs = def.Toolchain.BuildArgs
	}
	if len(c.Toolchain.FlashArgs) == 0 {
		c.Toolchain.FlashArgs = def.Toolchain.FlashArgs
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Timing.Path == "" {
		c.Timing.Path = def.Timing.Path
	}
	if c.Policy.Rules == nil {
		c.Policy.Rules = make(map[string]string)
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetRuleSeverity returns the severity for a rule, or the default if not configured
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Policy.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off"
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Policy.Rules[rule]; ok {
		return severity != "off"
	}
	return true // enabled by default
}

// OutputPath returns the System module path for a project root
func (c *Config) OutputPath(projectRoot string) string {
	path := c.Output.Path
	if path == "" {
		path = DefaultOutputPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}

// TimingPath returns the timing JSONL path for a project root, or "" when
// timing is disabled
func (c *Config) TimingPath(projectRoot string) string {
	if !c.Timing.Enabled {
		return ""
	}
	path := c.Timing.Path
	if path == "" {
		path = "timing.jsonl"
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}
