package app

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config describes an application for the command line tools:
//
//	viewport: {width: 1024, height: 768}
//	styles: [theme.style]
//	templates: [app.xml, row.xml]
//	root: App
//	output: out.png
//
// Relative paths are resolved against the config file's directory.
type Config struct {
	Viewport  Size     `yaml:"viewport"`
	Font      string   `yaml:"font"`
	Styles    []string `yaml:"styles"`
	Templates []string `yaml:"templates"`
	Root      string   `yaml:"root"`
	Output    string   `yaml:"output"`
	Frames    int      `yaml:"frames"`

	dir string
}

type Size struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// LoadConfig reads a YAML config file and fills in defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Viewport.Width <= 0 {
		cfg.Viewport.Width = 800
	}
	if cfg.Viewport.Height <= 0 {
		cfg.Viewport.Height = 600
	}
	if cfg.Frames <= 0 {
		cfg.Frames = 1
	}
	if cfg.Root == "" && len(cfg.Templates) > 0 {
		base := filepath.Base(cfg.Templates[0])
		cfg.Root = base[:len(base)-len(filepath.Ext(base))]
	}
	return cfg, nil
}

// Path resolves a path from the config against the config's directory.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Options returns the application options the config sets.
func (c *Config) Options() []Option {
	return []Option{WithViewport(c.Viewport.Width, c.Viewport.Height)}
}

// Load adds the config's style sheets and templates to a.
func (c *Config) Load(a *Application) error {
	for _, s := range c.Styles {
		src, err := os.ReadFile(c.Path(s))
		if err != nil {
			return err
		}
		if err := a.AddStyleSheet(s, string(src)); err != nil {
			return err
		}
	}
	for _, t := range c.Templates {
		src, err := os.ReadFile(c.Path(t))
		if err != nil {
			return err
		}
		if err := a.AddTemplate(t, string(src)); err != nil {
			return err
		}
	}
	return nil
}

// Open creates an application from the config, loads its files and mounts
// its root template. opts are applied after the config's own options.
func (c *Config) Open(opts ...Option) (*Application, error) {
	a := New(append(c.Options(), opts...)...)
	if err := c.Load(a); err != nil {
		return nil, err
	}
	if c.Root == "" {
		return nil, fmt.Errorf("config names no root template")
	}
	if err := a.Mount(c.Root, nil); err != nil {
		return nil, err
	}
	return a, nil
}
