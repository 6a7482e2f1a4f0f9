package config

import (
	"encoding/json"
	"fmt"
	"os"

	"unicorn-orientviz/internal/orient"
)

// Config holds all configurable device and render settings.
type Config struct {
	// Device
	Address string `json:"address"`
	NSamp   int    `json:"n_samp"`

	// View
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Convention  string `json:"convention"`
	Supersample int    `json:"supersample"`
	Texture     string `json:"texture"`

	// Dashboard
	Port int `json:"port"`

	// Snapshot output
	Output      string `json:"output"`
	WebPQuality int    `json:"webp_quality"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Address != "" {
		c.Address = flags.Address
	}
	if flags.NSamp > 0 {
		c.NSamp = flags.NSamp
	}
	if flags.Port > 0 {
		c.Port = flags.Port
	}
	if flags.Convention != "" {
		c.Convention = flags.Convention
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}

	// Defaults
	if c.NSamp <= 0 {
		c.NSamp = 50
	}
	if c.Width <= 0 {
		c.Width = 400
	}
	if c.Height <= 0 {
		c.Height = 400
	}
	if c.Convention == "" {
		c.Convention = orient.ReorderedImplicit
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Port <= 0 {
		c.Port = 8050
	}
	if c.Output == "" {
		c.Output = "orientation.webp"
	}
	if c.WebPQuality <= 0 {
		c.WebPQuality = 90
	}
}

// Validate rejects settings Resolve cannot repair.
func (c *Config) Validate() error {
	if _, err := orient.ConventionByName(c.Convention); err != nil {
		return err
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Address    string
	NSamp      int
	Port       int
	Convention string
	Output     string
}
