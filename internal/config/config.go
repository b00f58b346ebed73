// Package config loads and validates .gauntlet.yaml project
// configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gauntlet-dev/gauntlet/internal/hooks"
	"github.com/gauntlet-dev/gauntlet/internal/models"
)

// ConfigFileName is the project configuration file searched for from
// the working directory upward.
const ConfigFileName = ".gauntlet.yaml"

// maxSearchDepth bounds the upward directory walk in Load.
const maxSearchDepth = 10

// Defaults applied before the file is merged in.
const (
	DefaultMemoryThresholdPercent = 80.0
	DefaultCPUThresholdPercent    = 90.0
	DefaultMaxRetryAttempts       = 3
	DefaultRetryDelay             = time.Second
	DefaultHistoryRetention       = 30
	DefaultHistoryDir             = ".gauntlet/history"
)

// Duration wraps time.Duration with YAML string parsing ("30s", "2m").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// ResourceConfig tunes the resource monitor.
type ResourceConfig struct {
	MemoryThresholdPercent float64 `yaml:"memory_threshold_percent"`
	CPUThresholdPercent    float64 `yaml:"cpu_threshold_percent"`
}

// RecoveryConfig tunes the recovery engine.
type RecoveryConfig struct {
	MaxRetryAttempts    int      `yaml:"max_retry_attempts"`
	RetryDelay          Duration `yaml:"retry_delay"`
	AutoRecoveryEnabled *bool    `yaml:"auto_recovery_enabled"`
}

// HistoryConfig controls run-history storage.
type HistoryConfig struct {
	Dir       string `yaml:"dir"`
	Retention int    `yaml:"retention"`
}

// TaskConfig is one task entry in the config file.
type TaskConfig struct {
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"`
	DependsOn []string       `yaml:"depends_on"`
	Timeout   Duration       `yaml:"timeout"`
	Priority  int            `yaml:"priority"`
	Params    map[string]any `yaml:"params"`
	Metadata  map[string]any `yaml:"metadata"`
}

// ToTask converts the config entry into the scheduling model.
func (tc TaskConfig) ToTask() models.CheckTask {
	return models.CheckTask{
		Name:         tc.Name,
		CheckType:    tc.Type,
		Dependencies: tc.DependsOn,
		Timeout:      time.Duration(tc.Timeout),
		Priority:     tc.Priority,
		Params:       tc.Params,
		Metadata:     tc.Metadata,
	}
}

// Config is the full project configuration.
type Config struct {
	MaxParallel      int            `yaml:"max_parallel"`
	FailFast         bool           `yaml:"fail_fast"`
	Verbose          bool           `yaml:"verbose"`
	WorkingDirectory string         `yaml:"working_directory"`
	Resources        ResourceConfig `yaml:"resources"`
	Recovery         RecoveryConfig `yaml:"recovery"`
	History          HistoryConfig  `yaml:"history"`
	Hooks            hooks.Config   `yaml:"hooks"`
	Tasks            []TaskConfig   `yaml:"tasks"`

	// Dir is where the config file was found; empty for defaults.
	Dir string `yaml:"-"`
}

// New returns a Config with every default applied and no tasks.
func New() *Config {
	autoRecovery := true
	return &Config{
		Resources: ResourceConfig{
			MemoryThresholdPercent: DefaultMemoryThresholdPercent,
			CPUThresholdPercent:    DefaultCPUThresholdPercent,
		},
		Recovery: RecoveryConfig{
			MaxRetryAttempts:    DefaultMaxRetryAttempts,
			RetryDelay:          Duration(DefaultRetryDelay),
			AutoRecoveryEnabled: &autoRecovery,
		},
		History: HistoryConfig{
			Dir:       DefaultHistoryDir,
			Retention: DefaultHistoryRetention,
		},
	}
}

// AutoRecovery resolves the tri-state flag against the default.
func (c *Config) AutoRecovery() bool {
	if c.Recovery.AutoRecoveryEnabled == nil {
		return true
	}
	return *c.Recovery.AutoRecoveryEnabled
}

// CheckTasks converts every configured task.
func (c *Config) CheckTasks() []models.CheckTask {
	tasks := make([]models.CheckTask, 0, len(c.Tasks))
	for _, tc := range c.Tasks {
		tasks = append(tasks, tc.ToTask())
	}
	return tasks
}

// Load searches for .gauntlet.yaml from startDir upward, at most
// maxSearchDepth levels, and merges the first file found onto the
// defaults. Missing file is not an error; the defaults are returned.
func Load(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for range maxSearchDepth {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return loadFile(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return New(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)

	names := make(map[string]struct{}, len(cfg.Tasks))
	for _, tc := range cfg.Tasks {
		t := tc.ToTask()
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if _, dup := names[t.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate task name %q", path, t.Name)
		}
		names[t.Name] = struct{}{}
	}

	return cfg, nil
}
