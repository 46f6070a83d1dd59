// Package config handles application configuration for cac-core tools.
// Configuration lives in ~/.config/<app>/config.yaml; the file is seeded
// from registered defaults on first use, and every key can be overridden
// through <APP>_<KEY> environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rpunt/cac-core/pkg/model"
	"github.com/rpunt/cac-core/pkg/verbose"
)

const (
	// EnvConfigHome overrides the root directory for configuration files.
	// When unset, configuration lives under ~/.config.
	EnvConfigHome = "CAC_CONFIG_HOME"

	// FileName is the configuration file name inside the app directory.
	FileName = "config.yaml"

	dirPermissions  = 0o700
	filePermissions = 0o600
)

// Config provides access to an application's configuration values.
//
// Values resolve in precedence order: explicit Set calls, environment
// variables, the configuration file, registered defaults.
type Config struct {
	appName string
	path    string
	v       *viper.Viper
}

// Option configures loading.
type Option func(*loadOptions)

type loadOptions struct {
	configHome string
	defaults   map[string]any
}

// WithDefaults registers default values that seed the configuration file
// when it does not exist yet and act as fallbacks afterwards.
//
// Parameters:
//   - defaults: Default key/value pairs; nested maps are allowed
//
// Returns:
//   - Option: Load option
func WithDefaults(defaults map[string]any) Option {
	return func(o *loadOptions) {
		o.defaults = defaults
	}
}

// WithConfigHome overrides the configuration root directory. Mostly
// useful in tests; production code relies on EnvConfigHome or the
// user's home directory.
//
// Parameters:
//   - dir: Root directory to place <app>/config.yaml under
//
// Returns:
//   - Option: Load option
func WithConfigHome(dir string) Option {
	return func(o *loadOptions) {
		o.configHome = dir
	}
}

// Load loads (and on first use creates) the configuration for an
// application.
//
// It performs the following operations:
//   - Step 1: Resolves the config directory (<config home>/<app>)
//   - Step 2: Creates the directory and seeds config.yaml from defaults
//     when the file does not exist
//   - Step 3: Reads the file and binds <APP>_* environment overrides
//
// Parameters:
//   - appName: The application name; also the env prefix and directory name
//   - opts: Load options (WithDefaults, WithConfigHome)
//
// Returns:
//   - *Config: The loaded configuration
//   - error: When the directory cannot be created or the file cannot be parsed
func Load(appName string, opts ...Option) (*Config, error) {
	if appName == "" {
		return nil, fmt.Errorf("application name cannot be empty")
	}

	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	dir, err := resolveConfigDir(appName, o.configHome)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := seedConfigFile(path, o.defaults); err != nil {
			return nil, err
		}
		verbose.Infof("Seeded config file: %s", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	for key, value := range o.defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	verbose.Infof("Loaded config from: %s", path)

	return &Config{
		appName: appName,
		path:    path,
		v:       v,
	}, nil
}

// resolveConfigDir picks the directory holding the app's config file.
func resolveConfigDir(appName, override string) (string, error) {
	if override != "" {
		return filepath.Join(override, appName), nil
	}
	if env := os.Getenv(EnvConfigHome); env != "" {
		return filepath.Join(env, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// seedConfigFile writes the defaults as the initial config file.
func seedConfigFile(path string, defaults map[string]any) error {
	if defaults == nil {
		defaults = map[string]any{}
	}
	data, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// envPrefix converts an application name into its environment prefix.
// "my-app" becomes MY_APP, so MY_APP_SERVER_URL overrides server.url.
func envPrefix(appName string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(appName))
}

// AppName returns the application name this configuration belongs to.
func (c *Config) AppName() string {
	return c.appName
}

// Path returns the backing configuration file path.
//
// Returns:
//   - string: Absolute path to config.yaml
func (c *Config) Path() string {
	return c.path
}

// Get returns the value for a key, or nil when unset.
//
// Nested keys use dot notation ("server.url").
func (c *Config) Get(key string) any {
	return c.v.Get(key)
}

// GetDefault returns the value for a key, or the default when unset.
//
// Parameters:
//   - key: The configuration key (dot notation for nesting)
//   - def: Value to return when the key is not set anywhere
//
// Returns:
//   - any: The resolved value or the default
func (c *Config) GetDefault(key string, def any) any {
	if c.v.IsSet(key) {
		return c.v.Get(key)
	}
	return def
}

// GetString returns the value for a key as a string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns the value for a key as an int.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool returns the value for a key as a bool.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice returns the value for a key as a string slice.
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetStringMap returns the value for a key as a nested map.
func (c *Config) GetStringMap(key string) map[string]any {
	return c.v.GetStringMap(key)
}

// IsSet reports whether a key has a value from any source.
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// Set stores a value in memory. Call Save to persist it.
//
// Parameters:
//   - key: The configuration key (dot notation for nesting)
//   - value: The value to store
//
// Returns:
//   - None
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// Save writes the current settings back to the configuration file.
//
// All resolved settings are persisted, so values first supplied by
// defaults or the environment become part of the file.
//
// Returns:
//   - error: When encoding or writing fails; otherwise nil
func (c *Config) Save() error {
	data, err := yaml.Marshal(c.v.AllSettings())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(c.path, data, filePermissions); err != nil {
		return fmt.Errorf("write config file %s: %w", c.path, err)
	}
	verbose.Infof("Saved config to: %s", c.path)
	return nil
}

// Model returns the resolved settings as a dynamic model.
//
// Returns:
//   - *model.Model: All settings with nested maps as nested models
func (c *Config) Model() *model.Model {
	return model.New(c.v.AllSettings())
}
