// Package config holds the tunables of the editor. The defaults are embedded
// in config.yml; a user can override any of them in config.yml under
// <UserConfigDir>/montage.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/montage-editor/montage/audio"
)

type (
	Config struct {
		History struct {
			Limit    int
			Debounce Duration
		}
		Autosave struct {
			Delay Duration
		}
		Playback struct {
			FrameRate  int `yaml:"framerate"`
			SampleRate int `yaml:"samplerate"`
		}
		Assets struct {
			BaseURL string `yaml:"baseurl"`
			Dir     string
		}
		Projects struct {
			Dir string
		}
		Log struct {
			Level string
		}
	}

	// Duration is a time.Duration written as a string, e.g. "300ms".
	Duration time.Duration
)

//go:embed config.yml
var defaultConfig []byte

// Default returns the embedded defaults.
func Default() Config {
	var c Config
	if err := Decode(defaultConfig, &c); err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return c
}

// Load returns the defaults overridden by the user config file, if there is
// one. A malformed user file is an error; a missing one is not.
func Load() (Config, error) {
	c := Default()
	configDir, err := os.UserConfigDir()
	if err != nil {
		return c, nil
	}
	err = ReadFile(filepath.Join(configDir, "montage", "config.yml"), &c)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	return c, err
}

// ReadFile decodes the file at path over c.
func ReadFile(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := Decode(b, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Decode decodes b over c, rejecting unknown fields. Fields missing from b
// keep their value.
func Decode(b []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// FrameInterval is the period of the playback tick.
func (c *Config) FrameInterval() time.Duration {
	if c.Playback.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.Playback.FrameRate)
}

func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return l, nil
}

// Fetcher returns where assets are read from: the local directory if one is
// set, else the base URL, else nil.
func (c *Config) Fetcher() audio.Fetcher {
	switch {
	case c.Assets.Dir != "":
		return &audio.DirFetcher{Root: c.Assets.Dir}
	case c.Assets.BaseURL != "":
		return &audio.HTTPFetcher{BaseURL: c.Assets.BaseURL}
	default:
		return nil
	}
}
