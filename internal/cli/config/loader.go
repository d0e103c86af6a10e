package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/leapstack-labs/featdesign/internal/design"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "FEATDESIGN_"

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// flagsWithoutKey are flags that never map onto a config key. Repeatable
// declaration flags are merged by the commands that own them.
var flagsWithoutKey = map[string]bool{
	"config":  true,
	"stim":    true,
	"glt":     true,
	"gltfile": true,
	"help":    true,
}

// findConfigFile finds the config file to use.
// Priority: explicit path > featdesign.yaml > featdesign.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"featdesign.yaml", "featdesign.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"high_pass":      design.DefaultHighPass,
		"feat_model":     DefaultFeatModel,
		"state_path":     DefaultStateFile,
		"verbose":        false,
		"log_format":     DefaultLogFormat,
		"output":         DefaultOutput,
		"watch_debounce": DefaultWatchDebounce.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	baseDir, _ := os.Getwd()
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables (FEATDESIGN_ prefix)
	// Transform: FEATDESIGN_HIGH_PASS -> high_pass
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	var flagPaths = map[string]string{}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed || flagsWithoutKey[f.Name] {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// The CLI uses --state for brevity, the config key is state_path
			if key == "state" {
				key = "state_path"
			}
			if key == "state_path" || key == "template" {
				flagPaths[key] = f.Value.String()
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	cfg, err := unmarshal()
	if err != nil {
		return nil, err
	}

	// 6. Resolve paths. Flag values are relative to the working directory,
	// file and env values to the config file's directory.
	cfg.StatePath = resolveConfigPath(cfg.StatePath, flagPaths["state_path"], baseDir)
	cfg.Template = resolveConfigPath(cfg.Template, flagPaths["template"], baseDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = cfg

	return cfg, nil
}

func resolveConfigPath(value, fromFlag, baseDir string) string {
	if fromFlag != "" && value == fromFlag && value != ":memory:" {
		if abs, err := filepath.Abs(value); err == nil {
			return abs
		}
		return value
	}
	return resolvePathRelativeTo(value, baseDir)
}

// unmarshal decodes the merged koanf tree. EV and contrast entries are
// decoded a second time with unknown keys rejected so a typo in a
// declaration is an error rather than a silently dropped field.
func unmarshal() (*Config, error) {
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: decoderConfig(&cfg, false),
	}); err != nil {
		return nil, fmt.Errorf("%w: unable to decode config: %w", design.ErrValidation, err)
	}

	var evs []EVConfig
	if err := k.UnmarshalWithConf("evs", &evs, koanf.UnmarshalConf{
		DecoderConfig: decoderConfig(&evs, true),
	}); err != nil {
		return nil, fmt.Errorf("%w: unable to decode evs: %w", design.ErrValidation, err)
	}
	cfg.EVs = evs

	var contrasts []ContrastConfig
	if err := k.UnmarshalWithConf("contrasts", &contrasts, koanf.UnmarshalConf{
		DecoderConfig: decoderConfig(&contrasts, true),
	}); err != nil {
		return nil, fmt.Errorf("%w: unable to decode contrasts: %w", design.ErrValidation, err)
	}
	cfg.Contrasts = contrasts

	return &cfg, nil
}

func decoderConfig(result any, strict bool) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			modelKindHook(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		ErrorUnused:      strict,
		WeaklyTypedInput: true,
		TagName:          "koanf",
		Result:           result,
	}
}

// modelKindHook decodes model names and codes through design.ParseModelKind.
func modelKindHook() mapstructure.DecodeHookFuncType {
	kindType := reflect.TypeOf(design.ModelKind(0))
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != kindType {
			return data, nil
		}
		return design.ParseModelKind(data)
	}
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
