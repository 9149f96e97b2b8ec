package feature

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	FeaturesDir     string `json:"features_dir"`
	CompletedDir    string `json:"completed_dir,omitempty"`
	RecentDoneLimit int    `json:"recent_done_limit,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd    string `json:"-"` // absolute working directory
	FeaturesDirAbs  string `json:"-"`
	CompletedDirAbs string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string
	Project string
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".ft.json"

// DefaultConfig returns the default configuration. The completed directory
// defaults to <features_dir>/done when left empty.
func DefaultConfig() Config {
	return Config{
		FeaturesDir:     ".features",
		RecentDoneLimit: DefaultRecentDoneLimit,
	}
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride     string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath          string            // -c/--config flag value
	FeaturesDirOverride string            // --features-dir flag value; empty means no override
	Env                 map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest
// wins): defaults, global user config, project config (.ft.json), explicit
// config file via -c, CLI overrides. All paths in the returned Config are
// resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if input.FeaturesDirOverride != "" {
		cfg.FeaturesDir = input.FeaturesDirOverride
	}

	if cfg.FeaturesDir == "" {
		return Config{}, ErrFeaturesDirEmpty
	}

	cfg.EffectiveCwd = workDir
	cfg.FeaturesDirAbs = absAgainst(workDir, cfg.FeaturesDir)

	if cfg.CompletedDir == "" {
		cfg.CompletedDirAbs = filepath.Join(cfg.FeaturesDirAbs, "done")
	} else {
		cfg.CompletedDirAbs = absAgainst(workDir, cfg.CompletedDir)
	}

	if cfg.RecentDoneLimit <= 0 {
		cfg.RecentDoneLimit = DefaultRecentDoneLimit
	}

	return cfg, nil
}

func absAgainst(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}

// getGlobalConfigPath returns $XDG_CONFIG_HOME/ft/config.json if set,
// otherwise ~/.config/ft/config.json. Empty if no home can be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "ft", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "ft", "config.json")
	}

	return ""
}

func loadGlobalConfig(env map[string]string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	cfg, explicitEmpty, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["features_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, globalCfgPath, ErrFeaturesDirEmpty)
	}

	return cfg, globalCfgPath, nil
}

func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		// Explicit config file - must exist
		cfgFile = absAgainst(workDir, configPath)
		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		cfgFile = filepath.Join(workDir, ConfigFileName)
	}

	cfg, explicitEmpty, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["features_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, ErrFeaturesDirEmpty)
	}

	return cfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files
// return zero config. Returns the config, a map of explicitly empty fields,
// whether the file was loaded, and any error.
func loadConfigFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path comes from flags or well-known locations
	if err != nil {
		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

func parseConfig(data []byte) (Config, map[string]bool, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	// Track fields explicitly set to empty so "features_dir": "" can be
	// rejected instead of silently falling back to the default.
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["features_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["features_dir"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.FeaturesDir != "" {
		base.FeaturesDir = overlay.FeaturesDir
	}

	if overlay.CompletedDir != "" {
		base.CompletedDir = overlay.CompletedDir
	}

	if overlay.RecentDoneLimit > 0 {
		base.RecentDoneLimit = overlay.RecentDoneLimit
	}

	return base
}

// FormatConfig renders the serializable part of the config as JSON.
func FormatConfig(cfg Config) (string, error) {
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}

	return string(out), nil
}
