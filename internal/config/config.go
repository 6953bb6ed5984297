// Package config provides configuration related utilities.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Default values for config.
const (
	defaultLogPath                = "logs/cclint.log"
	defaultLogLevel               = "info"
	defaultMaxLogSizeMB           = 5
	defaultMaxLogBackups          = 10
	defaultMaxLogFileLifetimeDays = 14
)

// Config represents the analyzer's configuration.
type (
	Config struct {
		// Source files to analyze, in the order given on the command line.
		Sources []string `yaml:"-"`
		// Extra arguments forwarded verbatim to the frontend's compiler
		// invocation, e.g. "-Iinclude", "-DDEBUG".
		CompileArgs CompileArgs `yaml:"compile_args"`
		// EnableSuggestions controls whether findings carry remediation
		// suggestions.
		EnableSuggestions Enabled `yaml:"enable_suggestions" env:"ENABLE_SUGGESTIONS"`
		// StopOnError short-circuits a source's checker pipeline once any
		// error-severity finding has been produced.
		StopOnError Enabled `yaml:"stop_on_error" env:"STOP_ON_ERROR"`
		// OutputJSON selects JSON report output instead of the default
		// text format.
		OutputJSON Enabled `yaml:"output_json" env:"OUTPUT_JSON"`
		// OutputPath is the destination for report output; empty means
		// stdout.
		OutputPath string `yaml:"output_path" env:"OUTPUT_PATH"`
		// LibclangPath overrides the dynamic library search path for the
		// production frontend adapter.
		LibclangPath string `yaml:"libclang_path" env:"LIBCLANG_PATH"`
		Logger       Logger `yaml:"logger"`
	}
	// Logger configures the application's own structured logging.
	Logger struct {
		// Path to store log files.
		Path string `yaml:"log_path" env:"LOG_PATH"`
		// Application logging level.
		Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		// Log files details.
		MaxSizeMB  int `yaml:"max_size_mb"`
		MaxBackups int `yaml:"max_backups"`
		MaxAgeDays int `yaml:"max_age_days"`
	}
)

// Interface implementation guards.
var (
	_ flag.Value      = (*CompileArgs)(nil)
	_ cleanenv.Setter = (*CompileArgs)(nil)
	_ flag.Value      = (*Enabled)(nil)
	_ cleanenv.Setter = (*Enabled)(nil)
)

// CompileArgs accumulates repeated "--compile-arg" flag occurrences into
// an ordered list.
type CompileArgs []string

// String implements flag.Value.
func (a *CompileArgs) String() string {
	if a == nil {
		return ""
	}
	return strings.Join(*a, " ")
}

// Set implements flag.Value; it appends rather than replaces, so the
// flag can be repeated.
func (a *CompileArgs) Set(s string) error {
	*a = append(*a, s)
	return nil
}

// SetValue implements cleanenv value setter.
func (a *CompileArgs) SetValue(s string) error {
	if s == "" {
		return nil
	}
	*a = strings.Split(s, " ")
	return nil
}

// Enabled implements general setter for boolean values.
// Implements cleanenv value setter.
type Enabled bool

// Set sets Enabled value from string.
func (e *Enabled) Set(s string) error {
	trueValues := []string{"true", "1", "t", "T", "TRUE", "True"}
	falseValues := []string{"false", "0", "f", "F", "FALSE", "False", ""}
	switch {
	case slices.Contains(trueValues, s):
		*e = true
	case slices.Contains(falseValues, s):
		*e = false
	default:
		return fmt.Errorf("invalid value: %q; need boolean value in form: true: %q false: %q",
			s, strings.Join(trueValues, "\", \""), strings.Join(falseValues, "\", \""))
	}
	return nil
}

// SetValue implements cleanenv value setter.
func (e *Enabled) SetValue(s string) error {
	return e.Set(s)
}

// String returns a string representation of the Enabled value.
func (e *Enabled) String() string {
	return fmt.Sprintf("%v", *e)
}

// Order of loading configuration:
// 1. Defaults
// 2. Config file (YAML, JSON supported), selected via the CONFIG env var
// 3. Command-line flags
// 4. Environment variables

// MustLoad returns a Config populated from defaults, an optional config
// file, flags and environment variables, in that precedence order. args
// is typically os.Args[1:]; the non-flag arguments become cfg.Sources.
// It terminates the process on a malformed config file.
func MustLoad(args []string) *Config {
	var cfg Config
	cfg.Logger.Path = defaultLogPath
	cfg.Logger.Level = defaultLogLevel
	cfg.Logger.MaxSizeMB = defaultMaxLogSizeMB
	cfg.Logger.MaxBackups = defaultMaxLogBackups
	cfg.Logger.MaxAgeDays = defaultMaxLogFileLifetimeDays
	cfg.EnableSuggestions = true
	cfg.CompileArgs = CompileArgs{"-std=c11"}

	configPath, set := os.LookupEnv("CONFIG")

	if set {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Fatalf("config file does not exist: %v", err)
		}

		file, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("failed to open config file: %v", err)
		}
		defer file.Close()

		ext := filepath.Ext(configPath)
		switch ext {
		case ".yaml", ".yml":
			if err = cleanenv.ParseYAML(file, &cfg); err != nil {
				log.Fatalf("failed to parse config file: %v", err)
			}
		case ".json":
			if err = cleanenv.ParseJSON(file, &cfg); err != nil {
				log.Fatalf("failed to parse config file: %v", err)
			}
		default:
			log.Fatalf("unsupported configuration file extension: %q", ext)
		}
	}

	fs := flag.NewFlagSet("cclint", flag.ExitOnError)
	fs.Var(&cfg.CompileArgs, "compile-arg", "extra argument forwarded to the frontend (repeatable)")
	fs.Var(&cfg.OutputJSON, "json", "emit JSON reports instead of text")
	fs.Var(&cfg.StopOnError, "stop-on-error", "stop a source's checks at the first error finding")
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "write reports to this path instead of stdout")
	fs.StringVar(&cfg.Logger.Level, "log-level", cfg.Logger.Level, "logging level")
	_ = fs.Parse(args)
	cfg.Sources = fs.Args()

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to read environment variables: %v", err)
	}

	return &cfg
}

// NewForTest returns an analyzer configuration for testing.
func NewForTest(sources ...string) *Config {
	return &Config{
		Sources:           sources,
		EnableSuggestions: true,
		Logger: Logger{
			Path:       defaultLogPath,
			Level:      "debug",
			MaxSizeMB:  defaultMaxLogSizeMB,
			MaxBackups: defaultMaxLogBackups,
			MaxAgeDays: defaultMaxLogFileLifetimeDays,
		},
	}
}
