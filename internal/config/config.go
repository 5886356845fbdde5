// Application configuration loaded from TOML
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"photo-retouch/internal/pipeline"
)

type WindowConfig struct {
	Title  string  `toml:"title"`
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "text"
}

type RenderConfig struct {
	GrainBlurScale float64 `toml:"grain_blur_scale"`
	PreviewMaxDim  int     `toml:"preview_max_dim"`
	ThumbnailSize  int     `toml:"thumbnail_size"`
}

type ExportConfig struct {
	Prefix string `toml:"prefix"`
	Dir    string `toml:"dir"`
}

type ProgressConfig struct {
	Steps      int `toml:"steps"`
	IntervalMS int `toml:"interval_ms"`
}

// Interval is the delay between two progress reports
func (p ProgressConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// Config is the full application configuration
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Log      LogConfig      `toml:"log"`
	Render   RenderConfig   `toml:"render"`
	Export   ExportConfig   `toml:"export"`
	Progress ProgressConfig `toml:"progress"`
}

func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "Photo Retouch Studio",
			Width:  1400,
			Height: 900,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Render: RenderConfig{
			GrainBlurScale: pipeline.DefaultGrainBlurScale,
			PreviewMaxDim:  2048,
			ThumbnailSize:  96,
		},
		Export: ExportConfig{
			Prefix: "edited_",
		},
		Progress: ProgressConfig{
			Steps:      10,
			IntervalMS: 120,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg and validates the result. Keys absent from
// data keep their current values.
func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("parse error at %d:%d: %w", row, col, err)
		}
		return fmt.Errorf("parse: %w", err)
	}
	return cfg.Validate()
}

// Validate checks ranges that would otherwise break rendering
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %vx%v", c.Window.Width, c.Window.Height)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", c.Log.Format)
	}
	if c.Render.GrainBlurScale <= 0 {
		return fmt.Errorf("grain_blur_scale must be positive, got %v", c.Render.GrainBlurScale)
	}
	if c.Render.PreviewMaxDim < 64 {
		return fmt.Errorf("preview_max_dim must be at least 64, got %d", c.Render.PreviewMaxDim)
	}
	if c.Render.ThumbnailSize <= 0 {
		return fmt.Errorf("thumbnail_size must be positive, got %d", c.Render.ThumbnailSize)
	}
	if strings.ContainsAny(c.Export.Prefix, `/\`) {
		return fmt.Errorf("export prefix must not contain path separators: %q", c.Export.Prefix)
	}
	if c.Progress.Steps < 0 {
		return fmt.Errorf("progress steps must not be negative, got %d", c.Progress.Steps)
	}
	if c.Progress.Steps > 0 && c.Progress.IntervalMS <= 0 {
		return fmt.Errorf("progress interval_ms must be positive, got %d", c.Progress.IntervalMS)
	}
	return nil
}

// PipelineOptions returns the color pipeline tuning from the render section
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{GrainBlurScale: c.Render.GrainBlurScale}
}
