package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines viewer configuration.
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Visual   VisualConfig   `yaml:"visual"`
	Inspect  InspectConfig  `yaml:"inspect"`
	DB       DBConfig       `yaml:"db"`
	Log      LogConfig      `yaml:"log"`
}

type SnapshotConfig struct {
	// Endpoint is an http(s) URL, a file:// URL or a local path.
	Endpoint        string        `yaml:"endpoint"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	WatchDebounce   time.Duration `yaml:"watch_debounce"`
}

type VisualConfig struct {
	CameraDistance      float64 `yaml:"camera_distance"`
	CameraRotationSpeed float64 `yaml:"camera_rotation_speed"`
	FOV                 float64 `yaml:"fov"`
	FrameRate           int     `yaml:"frame_rate"`
}

type InspectConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Token   string `yaml:"token"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Path     string `yaml:"path"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// Camera distance limits enforced by the zoom clamp.
const (
	MinCameraDistance = 10.0
	MaxCameraDistance = 60.0
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Snapshot: SnapshotConfig{
			Endpoint:        "http://localhost:5000/api/latest",
			RefreshInterval: 60 * time.Second,
			FetchTimeout:    30 * time.Second,
			WatchDebounce:   250 * time.Millisecond,
		},
		Visual: VisualConfig{
			CameraDistance:      30,
			CameraRotationSpeed: 0.001,
			FOV:                 75,
			FrameRate:           30,
		},
		Inspect: InspectConfig{
			Host: "127.0.0.1",
			Port: 8090,
		},
		DB: DBConfig{
			Path: ":memory:",
		},
		Log: LogConfig{
			Level:    "info",
			Path:     "tracespace.log",
			MaxBytes: 10 * 1024 * 1024,
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables. An explicit path wins over TRACESPACE_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TRACESPACE_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if endpoint := os.Getenv("TRACESPACE_ENDPOINT"); endpoint != "" {
		cfg.Snapshot.Endpoint = endpoint
	}
	if intervalStr := os.Getenv("TRACESPACE_REFRESH_INTERVAL"); intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TRACESPACE_REFRESH_INTERVAL: %w", err)
		}
		cfg.Snapshot.RefreshInterval = interval
	}
	if dbPath := os.Getenv("TRACESPACE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("TRACESPACE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("TRACESPACE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if portStr := os.Getenv("TRACESPACE_INSPECT_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TRACESPACE_INSPECT_PORT: %w", err)
		}
		cfg.Inspect.Port = port
		cfg.Inspect.Enabled = true
	}
	if token := os.Getenv("TRACESPACE_INSPECT_TOKEN"); token != "" {
		cfg.Inspect.Token = token
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the viewer cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Snapshot.Endpoint == "" {
		errs = append(errs, errors.New("snapshot.endpoint is required"))
	}
	if c.Snapshot.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("snapshot.refresh_interval must be positive, got %s", c.Snapshot.RefreshInterval))
	}
	if c.Snapshot.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("snapshot.fetch_timeout must be positive, got %s", c.Snapshot.FetchTimeout))
	}
	if c.Visual.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("visual.frame_rate must be positive, got %d", c.Visual.FrameRate))
	}
	if c.Visual.CameraDistance < MinCameraDistance || c.Visual.CameraDistance > MaxCameraDistance {
		errs = append(errs, fmt.Errorf("visual.camera_distance must be within [%g, %g], got %g",
			MinCameraDistance, MaxCameraDistance, c.Visual.CameraDistance))
	}
	if c.Visual.FOV <= 0 || c.Visual.FOV >= 180 {
		errs = append(errs, fmt.Errorf("visual.fov must be within (0, 180), got %g", c.Visual.FOV))
	}
	if c.Inspect.Enabled && (c.Inspect.Port <= 0 || c.Inspect.Port > 65535) {
		errs = append(errs, fmt.Errorf("inspect.port out of range: %d", c.Inspect.Port))
	}
	return errors.Join(errs...)
}

// FrameInterval is the time between animation frames.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Visual.FrameRate)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
