// Package config loads the docgen CLI configuration from YAML, a .env file
// and DOCGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOCGEN_"

// PDF engines.
const (
	EngineChromium    = "chromium"
	EngineWKHTMLTOPDF = "wkhtmltopdf"
	EngineNone        = "none"
)

// Config holds the CLI configuration.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Render   RenderConfig   `yaml:"render"`
	Chromium ChromiumConfig `yaml:"chromium"`
	Settings SettingsConfig `yaml:"settings"`
	Log      LogConfig      `yaml:"log"`
}

// OutputConfig controls where artifacts land.
type OutputConfig struct {
	Dir string `yaml:"dir"`
	// Overwrite replaces files with the same name instead of adding " (n)".
	Overwrite bool `yaml:"overwrite"`
	// Retention is how long the cleanup command keeps artifacts. Zero keeps
	// everything.
	Retention time.Duration `yaml:"retention"`
}

// RenderConfig holds renderer settings.
type RenderConfig struct {
	Font           string `yaml:"font"`
	OptimizePhotos bool   `yaml:"optimize_photos"`
	PhotoFit       string `yaml:"photo_fit"`
	PDFEngine      string `yaml:"pdf_engine"`
	WKHTMLTOPDF    string `yaml:"wkhtmltopdf"`
	MaxHTMLBytes   int64  `yaml:"max_html_bytes"`
	// BaseURL resolves relative links when HTML is printed or rasterized.
	BaseURL string `yaml:"base_url"`
}

// ChromiumConfig configures the headless browser.
type ChromiumConfig struct {
	Path          string        `yaml:"path"`
	Headless      bool          `yaml:"headless"`
	Timeout       time.Duration `yaml:"timeout"`
	DeviceScale   float64       `yaml:"device_scale"`
	BlockExternal bool          `yaml:"block_external"`
	Args          []string      `yaml:"args"`
}

// SettingsConfig points at the profile database.
type SettingsConfig struct {
	DSN string `yaml:"dsn"`
	Key string `yaml:"key"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Output: OutputConfig{
			Dir: "./output",
		},
		Render: RenderConfig{
			Font:           "times",
			OptimizePhotos: true,
			PhotoFit:       "cover",
			PDFEngine:      EngineChromium,
			WKHTMLTOPDF:    "wkhtmltopdf",
			MaxHTMLBytes:   32 << 20,
		},
		Chromium: ChromiumConfig{
			Headless:    true,
			Timeout:     60 * time.Second,
			DeviceScale: 2,
		},
		Settings: SettingsConfig{
			DSN: "file:docgen.db?cache=shared",
			Key: "document-generator-profiles",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from DOCGEN_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			parsed, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = parsed
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			parsed, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = parsed
		}
	}

	str("OUTPUT_DIR", &c.Output.Dir)
	boolean("OUTPUT_OVERWRITE", &c.Output.Overwrite)
	duration("OUTPUT_RETENTION", &c.Output.Retention)
	str("FONT", &c.Render.Font)
	boolean("OPTIMIZE_PHOTOS", &c.Render.OptimizePhotos)
	str("PHOTO_FIT", &c.Render.PhotoFit)
	str("PDF_ENGINE", &c.Render.PDFEngine)
	str("WKHTMLTOPDF", &c.Render.WKHTMLTOPDF)
	str("BASE_URL", &c.Render.BaseURL)
	str("CHROMIUM_PATH", &c.Chromium.Path)
	boolean("CHROMIUM_HEADLESS", &c.Chromium.Headless)
	duration("CHROMIUM_TIMEOUT", &c.Chromium.Timeout)
	boolean("CHROMIUM_BLOCK_EXTERNAL", &c.Chromium.BlockExternal)
	if v, ok := lookup(EnvPrefix + "CHROMIUM_DEVICE_SCALE"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCHROMIUM_DEVICE_SCALE: %w", EnvPrefix, err))
		} else {
			c.Chromium.DeviceScale = parsed
		}
	}
	str("SETTINGS_DSN", &c.Settings.DSN)
	str("SETTINGS_KEY", &c.Settings.Key)
	str("LOG_LEVEL", &c.Log.Level)
	return errors.Join(errs...)
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	return validation.Errors{
		"output.dir":            validation.Validate(c.Output.Dir, validation.Required),
		"output.retention":      validation.Validate(int64(c.Output.Retention), validation.Min(int64(0))),
		"render.font":           validation.Validate(c.Render.Font, validation.In("calibri", "times", "poppins")),
		"render.photo_fit":      validation.Validate(c.Render.PhotoFit, validation.In("cover", "fit")),
		"render.pdf_engine":     validation.Validate(c.Render.PDFEngine, validation.Required, validation.In(EngineChromium, EngineWKHTMLTOPDF, EngineNone)),
		"render.max_html_bytes": validation.Validate(c.Render.MaxHTMLBytes, validation.Min(int64(0))),
		"chromium.timeout":      validation.Validate(int64(c.Chromium.Timeout), validation.Min(int64(0))),
		"chromium.device_scale": validation.Validate(c.Chromium.DeviceScale, validation.Min(0.0)),
		"settings.key":          validation.Validate(c.Settings.Key, validation.Required),
		"log.level":             validation.Validate(c.Log.Level, validation.In("debug", "info", "warn", "error")),
	}.Filter()
}
