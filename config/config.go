package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Alisser2001/sentinel/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	FileName  = "config.json"
	EnvPrefix = "SENTINEL"

	DefaultInterval     = 1500 * time.Millisecond
	DefaultLogLevel     = "info"
	DefaultSortField    = "%cpu"
	DefaultCPUThreshold = 80
	DefaultMemThreshold = 80
	DefaultProcRoot     = "/proc"

	minInterval = 100 * time.Millisecond
)

var ErrInvalid = errors.New("invalid configuration")

// Dir is the per-user configuration directory, ~/.sentinel.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".sentinel")
}

// Path is the configuration file inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

func Default(dir string) Config {
	return Config{
		Interval:     DefaultInterval,
		LogFile:      filepath.Join(dir, "sentinel.log"),
		LogLevel:     DefaultLogLevel,
		SortField:    DefaultSortField,
		HiddenFields: []string{},
		CPUThreshold: DefaultCPUThreshold,
		MemThreshold: DefaultMemThreshold,
		ProcRoot:     DefaultProcRoot,
	}
}

// Load reads dir/config.json from fs, applies SENTINEL_* environment
// overrides and validates the result. A missing file is created with the
// defaults.
func Load(fs afero.Fs, dir string) (Config, error) {
	path := Path(dir)
	def := Default(dir)

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		if err := Save(fs, dir, def); err != nil {
			logrus.WithError(err).WithField("path", path).Warn("could not write default config")
		}
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("interval", def.Interval)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("sort_field", def.SortField)
	v.SetDefault("sort_ascending", def.SortAscending)
	v.SetDefault("hidden_fields", def.HiddenFields)
	v.SetDefault("filter_user", def.FilterUser)
	v.SetDefault("cpu_threshold", def.CPUThreshold)
	v.SetDefault("mem_threshold", def.MemThreshold)
	v.SetDefault("proc_root", def.ProcRoot)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if exists {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as dir/config.json.
func Save(fs afero.Fs, dir string, cfg Config) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	hidden := cfg.HiddenFields
	if hidden == nil {
		hidden = []string{}
	}
	data, err := json.MarshalIndent(fileConfig{
		Interval:      cfg.Interval.String(),
		LogFile:       cfg.LogFile,
		LogLevel:      cfg.LogLevel,
		SortField:     cfg.SortField,
		SortAscending: cfg.SortAscending,
		HiddenFields:  hidden,
		FilterUser:    cfg.FilterUser,
		CPUThreshold:  cfg.CPUThreshold,
		MemThreshold:  cfg.MemThreshold,
		ProcRoot:      cfg.ProcRoot,
	}, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, Path(dir), data, 0o644)
}

// Validate checks every setting that has a restricted range.
func (c Config) Validate() error {
	if c.Interval < minInterval {
		return fmt.Errorf("%w: interval %s is below %s", ErrInvalid, c.Interval, minInterval)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.Sorter(); err != nil {
		return fmt.Errorf("%w: sort_field: %v", ErrInvalid, err)
	}
	if _, err := c.Mask(); err != nil {
		return fmt.Errorf("%w: hidden_fields: %v", ErrInvalid, err)
	}
	if c.CPUThreshold < 0 || c.MemThreshold < 0 {
		return fmt.Errorf("%w: thresholds must not be negative", ErrInvalid)
	}
	return nil
}

// Sorter is the initial sort column and direction.
func (c Config) Sorter() (model.Sorter, error) {
	s := model.NewSorter()
	f, err := model.FieldByKey(c.SortField)
	if err != nil {
		return s, err
	}
	if err := s.SetColumn(f.ID); err != nil {
		return s, err
	}
	s.Ascending = c.SortAscending
	return s, nil
}

// Mask is the set of visible columns.
func (c Config) Mask() (model.FieldMask, error) {
	return model.MaskWithout(c.HiddenFields)
}

// Level is the parsed log level, info when unset or invalid.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
