package config

import "time"

// Config holds the persisted monitor settings.
type Config struct {
	Interval      time.Duration `mapstructure:"interval"`
	LogFile       string        `mapstructure:"log_file"`
	LogLevel      string        `mapstructure:"log_level"`
	SortField     string        `mapstructure:"sort_field"`
	SortAscending bool          `mapstructure:"sort_ascending"`
	HiddenFields  []string      `mapstructure:"hidden_fields"`
	FilterUser    string        `mapstructure:"filter_user"`
	CPUThreshold  float64       `mapstructure:"cpu_threshold"`
	MemThreshold  float64       `mapstructure:"mem_threshold"`
	ProcRoot      string        `mapstructure:"proc_root"`
}

// fileConfig is the on-disk JSON shape.
type fileConfig struct {
	Interval      string   `json:"interval"`
	LogFile       string   `json:"log_file"`
	LogLevel      string   `json:"log_level"`
	SortField     string   `json:"sort_field"`
	SortAscending bool     `json:"sort_ascending"`
	HiddenFields  []string `json:"hidden_fields"`
	FilterUser    string   `json:"filter_user"`
	CPUThreshold  float64  `json:"cpu_threshold"`
	MemThreshold  float64  `json:"mem_threshold"`
	ProcRoot      string   `json:"proc_root"`
}
