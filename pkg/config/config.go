// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Thermoquad/prism/pkg/syncutil"
	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	SchemaVersion = 1
	CfgFile       = "prism.toml"
	CfgEnv        = "PRISM_CONFIG"
	AppDir        = "prism"
)

// Duration is a time.Duration written as text ("200ms", "2s") in TOML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

type Values struct {
	ConfigSchema int       `toml:"config_schema"`
	DebugLogging bool      `toml:"debug_logging"`
	Serial       Serial    `toml:"serial"`
	Backend      Backend   `toml:"backend"`
	Timing       Timing    `toml:"timing"`
	Companion    Companion `toml:"companion"`
}

// Serial configures the direct connection to the device.
type Serial struct {
	Port         string   `toml:"port"`
	Baud         int      `toml:"baud" validate:"oneof=9600 19200 38400 57600 115200"`
	ReadTimeout  Duration `toml:"read_timeout" validate:"gt=0"`
	CommandDelay Duration `toml:"command_delay" validate:"gte=0"`
}

// Backend configures the REST backend. The password is never stored; it
// comes from PRISM_PASSWORD or a prompt.
type Backend struct {
	URL      string `toml:"url,omitempty" validate:"omitempty,http_url"`
	Username string `toml:"username,omitempty"`
	Insecure bool   `toml:"insecure"`
}

type Timing struct {
	InterCommand   Duration `toml:"inter_command" validate:"gte=0"`
	ConnectBackoff Duration `toml:"connect_backoff" validate:"gte=0"`
	PowerSettle    Duration `toml:"power_settle" validate:"gte=0"`
	BootSettle     Duration `toml:"boot_settle" validate:"gte=0"`
	VolumeRetry    Duration `toml:"volume_retry" validate:"gte=0"`
	PollInterval   Duration `toml:"poll_interval" validate:"gte=1000000000"`
}

type Companion struct {
	MappingsFile string `toml:"mappings_file,omitempty"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Serial: Serial{
		Port:         "/dev/serial0",
		Baud:         115200,
		ReadTimeout:  Duration(2 * time.Second),
		CommandDelay: Duration(200 * time.Millisecond),
	},
	Timing: Timing{
		InterCommand:   Duration(200 * time.Millisecond),
		ConnectBackoff: Duration(time.Second),
		PowerSettle:    Duration(2 * time.Second),
		BootSettle:     Duration(3 * time.Second),
		VolumeRetry:    Duration(500 * time.Millisecond),
		PollInterval:   Duration(5 * time.Second),
	},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges.
func (v *Values) Validate() error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

type Instance struct {
	fs       afero.Fs
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// DefaultDir is the per-user config directory for prism.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find user config dir: %w", err)
	}
	return filepath.Join(dir, AppDir), nil
}

// NewConfig opens the config file at cfgPath, or under configDir when
// cfgPath is empty and PRISM_CONFIG is unset. A missing file is created
// from defaults.
//
//nolint:gocritic // defaults copied for immutability
func NewConfig(fsys afero.Fs, configDir, cfgPath string, defaults Values) (*Instance, error) {
	if cfgPath == "" {
		cfgPath = os.Getenv(CfgEnv)
		log.Debug().Msgf("env config path: %s", cfgPath)
	}
	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := &Instance{
		fs:       fsys,
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	exists, err := afero.Exists(fsys, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !exists {
		log.Info().Str("path", cfgPath).Msg("saving new default config to disk")
		if err := fsys.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

// Load rereads the file. Keys missing from the file keep their defaults.
func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s not found: %w", c.cfgPath, err)
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	newVals := c.defaults
	if err := toml.Unmarshal(data, &newVals); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}
	if err := newVals.Validate(); err != nil {
		return err
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.vals.ConfigSchema = SchemaVersion
	if err := c.vals.Validate(); err != nil {
		return err
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Values returns a copy of the current settings.
func (c *Instance) Values() Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) Serial() Serial {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Serial
}

// SetSerialPort changes the remembered port. Call Save to persist it.
func (c *Instance) SetSerialPort(port string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Serial.Port = port
}

func (c *Instance) Backend() Backend {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Backend
}

func (c *Instance) Timing() Timing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Timing
}

// MappingsFile is where companion mappings live when no backend is used.
// A relative setting is resolved against the config file's directory.
func (c *Instance) MappingsFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name := c.vals.Companion.MappingsFile
	if name == "" {
		name = "companion.toml"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(c.cfgPath), name)
}
