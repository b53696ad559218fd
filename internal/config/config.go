// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Window Window `yaml:"window" json:"window"`
	Render Render `yaml:"render" json:"render"`
}

// Window describes the viewer surface: its caption and pixel size.
type Window struct {
	Title  string `yaml:"title"  json:"title"`
	Width  int    `yaml:"width"  json:"width"  validate:"gt=0,lte=16384"`
	Height int    `yaml:"height" json:"height" validate:"gt=0,lte=16384"`
}

// Render holds the style of rendered map images.
type Render struct {
	Format      string  `yaml:"format"      json:"format"      validate:"oneof=webp png"`
	Background  string  `yaml:"background"  json:"background"  validate:"hexcolor"`
	GraphColor  string  `yaml:"graph_color" json:"graph_color" validate:"hexcolor"`
	PathColor   string  `yaml:"path_color"  json:"path_color"  validate:"hexcolor"`
	TextColor   string  `yaml:"text_color"  json:"text_color"  validate:"hexcolor"`
	NodeRadius  float64 `yaml:"node_radius" json:"node_radius" validate:"gt=0"`
	EdgeWidth   float64 `yaml:"edge_width"  json:"edge_width"  validate:"gt=0"`
	PathWidth   float64 `yaml:"path_width"  json:"path_width"  validate:"gt=0"`
	Quality     float32 `yaml:"quality"     json:"quality"     validate:"gte=0,lte=100"`
	Padding     int     `yaml:"padding"     json:"padding"     validate:"gte=0"`
	Supersample int     `yaml:"supersample" json:"supersample" validate:"gte=1,lte=4"`
	Lossless    bool    `yaml:"lossless"    json:"lossless"`
	Caption     bool    `yaml:"caption"     json:"caption"`
}

// Default returns the built-in configuration. Colors and sizes follow the
// classic viewer: green background, light grey graph, black route.
func Default() *Config {
	return &Config{
		Window: Window{
			Title:  "Graph",
			Width:  800,
			Height: 572,
		},
		Render: Render{
			Format:      "webp",
			Background:  "#66cc66",
			GraphColor:  "#f5f5f5",
			PathColor:   "#000000",
			TextColor:   "#000000",
			NodeRadius:  5,
			EdgeWidth:   2,
			PathWidth:   5,
			Quality:     85,
			Padding:     20,
			Supersample: 2,
			Caption:     true,
		},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// Keys missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault is Load that falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", path).Msg("Configuration file not found, using defaults")
		return Default(), nil
	}
	return cfg, err
}

// Validate checks value ranges and color formats.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
