// Package config reads the engine settings from xoom.yaml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no --config
// flag is given.
const DefaultFileName = "xoom.yaml"

// Config is the full engine configuration. Absent keys keep their defaults.
type Config struct {
	Window WindowConfig `yaml:"window"`
	Player PlayerConfig `yaml:"player"`
	BSP    BSPConfig    `yaml:"bsp"`
	Assets AssetsConfig `yaml:"assets"`
	Log    LogConfig    `yaml:"log"`
	Debug  DebugConfig  `yaml:"debug"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	// FPS caps the frame rate of the render loop.
	FPS int `yaml:"fps"`
}

type PlayerConfig struct {
	// FOVDeg is the full horizontal field of view.
	FOVDeg float64 `yaml:"fov_deg"`
	// FOVLength is the view distance in map units.
	FOVLength float64 `yaml:"fov_length"`
	// Speed is movement speed in map units per second.
	Speed float64 `yaml:"speed"`
	// TurnSpeedDeg is rotation speed in degrees per second.
	TurnSpeedDeg float64 `yaml:"turn_speed_deg"`
	// Radius is the collision bounding radius in map units.
	Radius float64 `yaml:"radius"`
}

type BSPConfig struct {
	// Strategy selects the splitting-wall pick: "first" or "random".
	Strategy string `yaml:"strategy"`
	MaxDepth int    `yaml:"max_depth"`
}

type AssetsConfig struct {
	// Textures is the directory scanned for .qoi texture files.
	Textures string `yaml:"textures"`
	// Map is the default map file for `xoom play`.
	Map string `yaml:"map"`
}

type LogConfig struct {
	// File, when non-empty, receives a copy of the log output in addition
	// to stderr.
	File string `yaml:"file"`
}

type DebugConfig struct {
	// Addr enables the websocket state stream when non-empty,
	// e.g. "localhost:7777".
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{Width: 800, Height: 600, Title: "xoom", FPS: 60},
		Player: PlayerConfig{
			FOVDeg:       60,
			FOVLength:    250,
			Speed:        30,
			TurnSpeedDeg: 90,
			Radius:       16,
		},
		BSP:    BSPConfig{Strategy: "first", MaxDepth: 32},
		Assets: AssetsConfig{Textures: "assets/textures", Map: "assets/maps/E1M1.xmap"},
	}
}

// Load reads path and overlays it onto the defaults. A missing file is not
// an error when the path is the default lookup: the defaults stand alone.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultFileName {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d is not positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.FPS <= 0 {
		return fmt.Errorf("window fps %d must be positive", c.Window.FPS)
	}
	if c.Player.FOVDeg <= 0 || c.Player.FOVDeg >= 180 {
		return fmt.Errorf("player fov_deg %g must be in (0, 180)", c.Player.FOVDeg)
	}
	if c.Player.Radius <= 0 {
		return fmt.Errorf("player radius %g must be positive", c.Player.Radius)
	}
	switch c.BSP.Strategy {
	case "first", "random":
	default:
		return fmt.Errorf("bsp strategy %q is not one of first, random", c.BSP.Strategy)
	}
	if c.BSP.MaxDepth <= 0 {
		return fmt.Errorf("bsp max_depth %d must be positive", c.BSP.MaxDepth)
	}
	return nil
}
