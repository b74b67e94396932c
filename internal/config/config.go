// Package config loads and validates the simulation configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// maxFileSize bounds config parsing for safety (1MB).
const maxFileSize = 1 * 1024 * 1024

// Config is the root configuration parsed from the JSON file named on
// the command line. Field names match the file's keys.
type Config struct {
	// TickTime is the duration of one tick in seconds.
	TickTime int `json:"TickTime"`

	// Duration is the maximum tick count for the run.
	Duration int `json:"Duration"`

	// PoseJSONFile is the path to the pose dataset.
	PoseJSONFile string `json:"poseJsonFile"`

	Cameras      CamerasConfig `json:"Cameras"`
	LiDarWorkers LidarsConfig  `json:"LiDarWorkers"`
}

// CamerasConfig holds the camera dataset path and per-camera settings.
type CamerasConfig struct {
	CamerasConfigurations []CameraConfig `json:"CamerasConfigurations"`
	CameraDatasPath       string         `json:"camera_datas_path"`
}

// CameraConfig describes a single camera.
type CameraConfig struct {
	ID        int    `json:"id"`
	Frequency int    `json:"frequency"`
	CameraKey string `json:"camera_key"`
}

// LidarsConfig holds the LiDAR dataset path and per-worker settings.
type LidarsConfig struct {
	LidarConfigurations []LidarConfig `json:"LidarConfigurations"`
	LidarsDataPath      string        `json:"lidars_data_path"`
}

// LidarConfig describes a single LiDAR worker.
type LidarConfig struct {
	ID        int `json:"id"`
	Frequency int `json:"frequency"`
}

// Load reads and validates a configuration file. The file must have a
// .json extension and be under the max file size.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.TickTime <= 0 {
		return fmt.Errorf("TickTime must be positive, got %d", c.TickTime)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("Duration must be positive, got %d", c.Duration)
	}
	if c.PoseJSONFile == "" {
		return fmt.Errorf("poseJsonFile must be set")
	}
	if c.Cameras.CameraDatasPath == "" {
		return fmt.Errorf("Cameras.camera_datas_path must be set")
	}
	if c.LiDarWorkers.LidarsDataPath == "" {
		return fmt.Errorf("LiDarWorkers.lidars_data_path must be set")
	}
	for _, cam := range c.Cameras.CamerasConfigurations {
		if cam.Frequency < 0 {
			return fmt.Errorf("camera %d frequency must be non-negative, got %d", cam.ID, cam.Frequency)
		}
		if cam.CameraKey == "" {
			return fmt.Errorf("camera %d camera_key must be set", cam.ID)
		}
	}
	for _, l := range c.LiDarWorkers.LidarConfigurations {
		if l.Frequency < 0 {
			return fmt.Errorf("lidar %d frequency must be non-negative, got %d", l.ID, l.Frequency)
		}
	}
	return nil
}

// TickPeriod returns TickTime as a duration.
func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.TickTime) * time.Second
}
