// This file maps the CLI context and the optional YAML config file onto the
// launcher's Config.

package launcher

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/burninrubber0/libbinaryio/binaryio"
)

// Config aggregates everything a command needs.
type Config struct {
	Log    LoggingConfig `yaml:"log"`
	Sentry SentryConfig  `yaml:"sentry"`
	Codec  CodecConfig   `yaml:"codec"`
	IO     IOConfig      `yaml:"io"`
}

type LoggingConfig struct {
	Verbosity int    `yaml:"verbosity"`
	Format    string `yaml:"format"`
	Color     bool   `yaml:"color"`
}

type SentryConfig struct {
	DSN     string        `yaml:"dsn"`
	Timeout time.Duration `yaml:"timeout"`
}

// CodecConfig overrides the layout: BigEndian and Wide can only switch the
// respective mode on.
type CodecConfig struct {
	BigEndian bool   `yaml:"big_endian"`
	Wide      bool   `yaml:"wide"`
	Verify    string `yaml:"verify"`
}

type IOConfig struct {
	Layout string `yaml:"layout"`
	Offset int64  `yaml:"offset"`
	Hex    string `yaml:"hex"`
	Out    string `yaml:"out"`
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

func defaultConfig() Config {
	def := DefaultConfig()
	return Config{
		Log: LoggingConfig{
			Verbosity: def.Logging.Verbosity,
			Format:    def.Logging.Format,
			Color:     def.Logging.Color,
		},
		Sentry: SentryConfig{
			DSN:     def.Sentry.DSN,
			Timeout: def.Sentry.Timeout,
		},
		Codec: CodecConfig{
			BigEndian: def.Codec.BigEndian,
			Wide:      def.Codec.Wide,
			Verify:    def.Codec.Verify,
		},
	}
}

// MakeAllConfigs merges defaults, config-file values, and CLI overrides into
// a single config struct.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.GlobalString("config"); file != "" {
		if err := loadConfigFile(resolvePath(file), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if _, err := binaryio.ParseVerifyMode(cfg.Codec.Verify); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Binaryio turns the codec section into cursor configuration.
func (c Config) Binaryio(logger logrus.FieldLogger) (binaryio.Config, error) {
	mode, err := binaryio.ParseVerifyMode(c.Codec.Verify)
	if err != nil {
		return binaryio.Config{}, err
	}
	return binaryio.Config{
		BigEndian: c.Codec.BigEndian,
		Wide:      c.Codec.Wide,
		Verify:    mode,
		Logger:    logger,
	}, nil
}

// -----------------------------------------------------------------------------
// Config-file / CLI wiring
// -----------------------------------------------------------------------------

// loadConfigFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current values; unknown keys are an error.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// applyCLIOverrides copies explicitly set flags into cfg. Common and codec
// flags live on the app, I/O flags on the command.
func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet("log.format") {
		cfg.Log.Format = ctx.GlobalString("log.format")
	}
	if ctx.GlobalIsSet("log.verbosity") {
		cfg.Log.Verbosity = ctx.GlobalInt("log.verbosity")
	}
	if ctx.GlobalIsSet("log.color") {
		cfg.Log.Color = ctx.GlobalBool("log.color")
	}
	if ctx.GlobalIsSet("sentry.dsn") {
		cfg.Sentry.DSN = ctx.GlobalString("sentry.dsn")
	}

	if ctx.GlobalBool("big-endian") {
		cfg.Codec.BigEndian = true
	}
	if ctx.GlobalBool("64bit") {
		cfg.Codec.Wide = true
	}
	if ctx.GlobalIsSet("strict") {
		if ctx.GlobalBoolT("strict") {
			cfg.Codec.Verify = binaryio.VerifyStrict.String()
		} else {
			cfg.Codec.Verify = binaryio.VerifyLenient.String()
		}
	}

	if ctx.IsSet("layout") {
		cfg.IO.Layout = resolvePath(ctx.String("layout"))
	}
	if ctx.IsSet("offset") {
		cfg.IO.Offset = ctx.Int64("offset")
	}
	if ctx.IsSet("hex") {
		cfg.IO.Hex = ctx.String("hex")
	}
	if ctx.IsSet("out") {
		cfg.IO.Out = resolvePath(ctx.String("out"))
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
