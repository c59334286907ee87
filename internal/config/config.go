// Package config resolves the pipeline settings from flags, environment
// variables (PGM_STEGO_*) and an optional config file, using viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/pgm-stego/internal/raster"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when reading environment variables,
// e.g. PGM_STEGO_WIDTH or PGM_STEGO_LOG_LEVEL.
const EnvPrefix = "PGM_STEGO"

// Keys shared by flags, environment and config files.
const (
	KeyWidth     = "width"
	KeyHeight    = "height"
	KeyCover     = "cover"
	KeySecret    = "secret"
	KeyStego     = "stego"
	KeyRecovered = "recovered"
	KeyLogLevel  = "log-level"
)

// Default image geometry and file names.
const (
	DefaultWidth     = 512
	DefaultHeight    = 512
	DefaultCover     = "baboon.pgm"
	DefaultSecret    = "farm.pgm"
	DefaultStego     = "stego_image_bin.pgm"
	DefaultRecovered = "extracted_secret.pgm"
)

// Config holds everything one pipeline run needs.
type Config struct {
	// Dims is the fixed geometry every raster in the run must have.
	Dims raster.Dims

	// Cover and Secret are text-form inputs.
	Cover  string
	Secret string

	// Stego is written in binary form; Recovered in text form.
	Stego     string
	Recovered string

	LogLevel string
}

// New returns a viper instance with defaults and environment lookup configured.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyWidth, DefaultWidth)
	v.SetDefault(KeyHeight, DefaultHeight)
	v.SetDefault(KeyCover, DefaultCover)
	v.SetDefault(KeySecret, DefaultSecret)
	v.SetDefault(KeyStego, DefaultStego)
	v.SetDefault(KeyRecovered, DefaultRecovered)
	v.SetDefault(KeyLogLevel, "")
	return v
}

// AddGlobalFlags registers the flags every command understands.
func AddGlobalFlags(fs *pflag.FlagSet) {
	fs.Int(KeyWidth, DefaultWidth, "raster width in pixels")
	fs.Int(KeyHeight, DefaultHeight, "raster height in pixels")
	fs.String(KeyLogLevel, "", "log level: debug, info, warn, error (default $"+EnvPrefix+"_LOG_LEVEL or warn)")
}

// AddPipelineFlags registers the input/output file flags of the full pipeline.
func AddPipelineFlags(fs *pflag.FlagSet) {
	fs.String(KeyCover, DefaultCover, "cover raster (text form)")
	fs.String(KeySecret, DefaultSecret, "secret raster (text form)")
	fs.String(KeyStego, DefaultStego, "stego raster output (binary form)")
	fs.String(KeyRecovered, DefaultRecovered, "recovered secret output (text form)")
}

// Load binds fs into v, reads file when non-empty and returns the validated
// configuration. Precedence: flags set on the command line, environment,
// config file, defaults.
func Load(v *viper.Viper, fs *pflag.FlagSet, file string) (Config, error) {
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	cfg := Config{
		Dims: raster.Dims{
			Width:  v.GetInt(KeyWidth),
			Height: v.GetInt(KeyHeight),
		},
		Cover:     v.GetString(KeyCover),
		Secret:    v.GetString(KeySecret),
		Stego:     v.GetString(KeyStego),
		Recovered: v.GetString(KeyRecovered),
		LogLevel:  v.GetString(KeyLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the geometry is usable and that no output would
// overwrite an input or the other output.
func (c Config) Validate() error {
	var errs []error
	if !c.Dims.Valid() {
		errs = append(errs, fmt.Errorf("width and height must be positive, got %s", c.Dims))
	}

	paths := map[string]string{
		KeyCover:     c.Cover,
		KeySecret:    c.Secret,
		KeyStego:     c.Stego,
		KeyRecovered: c.Recovered,
	}
	for _, k := range []string{KeyCover, KeySecret, KeyStego, KeyRecovered} {
		if paths[k] == "" {
			errs = append(errs, fmt.Errorf("%s path is empty", k))
		}
	}
	pairs := [][2]string{
		{KeyStego, KeyCover},
		{KeyStego, KeySecret},
		{KeyStego, KeyRecovered},
		{KeyRecovered, KeyCover},
		{KeyRecovered, KeySecret},
	}
	for _, p := range pairs {
		if a, b := paths[p[0]], paths[p[1]]; a != "" && b != "" && raster.SamePath(a, b) {
			errs = append(errs, fmt.Errorf("%s and %s both refer to %s", p[0], p[1], a))
		}
	}
	return errors.Join(errs...)
}
