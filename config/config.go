// Package config loads engine settings from a YAML file, an optional .env
// file and HOTBEAN_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "HOTBEAN_"

type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type Logging struct {
	Level   string `yaml:"level"`
	Path    string `yaml:"path"`
	Console bool   `yaml:"console"`
	JSON    bool   `yaml:"json"`
}

type ECS struct {
	MaxEntities int  `yaml:"max_entities"`
	Strict      bool `yaml:"strict"`
}

type Assets struct {
	Path string `yaml:"path"`
}

type Loop struct {
	TickRate int     `yaml:"tick_rate"`
	Gravity  float64 `yaml:"gravity"`
}

// Interval is the time between two frames at TickRate.
func (l Loop) Interval() time.Duration {
	if l.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(l.TickRate)
}

type Config struct {
	Window  Window  `yaml:"window"`
	Logging Logging `yaml:"logging"`
	ECS     ECS     `yaml:"ecs"`
	Assets  Assets  `yaml:"assets"`
	Loop    Loop    `yaml:"loop"`
}

func Default() Config {
	return Config{
		Window:  Window{Title: "Hot Bean Engine", Width: 1280, Height: 720},
		Logging: Logging{Level: "info", Console: true},
		ECS:     ECS{MaxEntities: 5000},
		Assets:  Assets{Path: "assets"},
		Loop:    Loop{TickRate: 60, Gravity: 980},
	}
}

// Load reads the YAML file at path over the defaults, then applies overrides
// from envFiles (".env" when none are given; missing files are skipped) and
// the process environment. An empty path skips the YAML file.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	dotenv := make(map[string]string)
	for _, f := range envFiles {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return cfg, fmt.Errorf("config: %s: %w", f, err)
		}
		for k, v := range vals {
			dotenv[k] = v
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var err error
	integer := func(name string, dst *int) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || err != nil {
			return
		}
		n, perr := strconv.Atoi(v)
		if perr != nil {
			err = fmt.Errorf("config: %s%s: %w", EnvPrefix, name, perr)
			return
		}
		*dst = n
	}
	boolean := func(name string, dst *bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || err != nil {
			return
		}
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			err = fmt.Errorf("config: %s%s: %w", EnvPrefix, name, perr)
			return
		}
		*dst = b
	}

	str("WINDOW_TITLE", &c.Window.Title)
	integer("WINDOW_WIDTH", &c.Window.Width)
	integer("WINDOW_HEIGHT", &c.Window.Height)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_PATH", &c.Logging.Path)
	boolean("LOG_CONSOLE", &c.Logging.Console)
	boolean("LOG_JSON", &c.Logging.JSON)
	integer("MAX_ENTITIES", &c.ECS.MaxEntities)
	boolean("STRICT", &c.ECS.Strict)
	str("ASSETS", &c.Assets.Path)
	integer("TICK_RATE", &c.Loop.TickRate)
	return err
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("config: window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.ECS.MaxEntities <= 0:
		return fmt.Errorf("config: max_entities must be positive, got %d", c.ECS.MaxEntities)
	case c.Loop.TickRate <= 0:
		return fmt.Errorf("config: tick_rate must be positive, got %d", c.Loop.TickRate)
	}
	return nil
}
