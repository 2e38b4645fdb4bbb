// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"github.com/mcardproject/mcard/internal/errs"
)

// isConfigFileMissing reports whether err means "no config file", which is
// never fatal for an EnvSource.
func isConfigFileMissing(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return os.IsNotExist(err)
}

// Setting keys shared by file and environment sources. The environment
// variable for a key is MCARD_ plus the key uppercased with dots replaced
// by underscores (db.path -> MCARD_DB_PATH).
const (
	KeyDBEngine           = "db.engine"
	KeyDBPath             = "db.path"
	KeyMaxConnections     = "store.max_connections"
	KeyTimeout            = "store.timeout"
	KeyHashAlgorithm      = "hash.algorithm"
	KeyHashCustomModule   = "hash.custom_module"
	KeyHashCustomFunction = "hash.custom_function"
	KeyHashCustomLength   = "hash.custom_length"
	KeyForceDefault       = "force_default_config"
)

// settingKeys is the closed set of keys a source may emit.
var settingKeys = []string{
	KeyDBEngine,
	KeyDBPath,
	KeyMaxConnections,
	KeyTimeout,
	KeyHashAlgorithm,
	KeyHashCustomModule,
	KeyHashCustomFunction,
	KeyHashCustomLength,
	KeyForceDefault,
}

// EnvVar returns the environment variable name for a setting key.
func EnvVar(key string) string {
	return "MCARD_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Raw is the unvalidated output of a Source. Values holds only the keys
// the source actually set — including keys set to the empty string — so
// validation can distinguish an absent field (falls back to its default)
// from a present-but-malformed one (always an error).
type Raw struct {
	Mode   Mode
	Values map[string]string
}

// Source produces raw settings for the provider. Implementations expose a
// single capability; one shared validation routine applies regardless of
// where the values came from.
type Source interface {
	Load() (Raw, error)
}

// EnvSource layers MCARD_* environment variables over an optional
// mcard.yaml config file. Environment values always win; the layering is
// resolved once per Load, at configure time.
type EnvSource struct {
	Mode Mode
	// ConfigFile, when non-empty, is read instead of searching the
	// standard locations.
	ConfigFile string
}

// NewEnvSource returns an environment-backed source for the given mode.
func NewEnvSource(mode Mode) *EnvSource {
	return &EnvSource{Mode: mode}
}

// Load reads the config file layer (when present) and overlays it with the
// environment. A missing config file is not an error.
func (s *EnvSource) Load() (Raw, error) {
	values := map[string]string{}

	v := viper.New()
	v.SetConfigName("mcard")
	v.SetConfigType("yaml")
	if s.ConfigFile != "" {
		v.SetConfigFile(s.ConfigFile)
	} else {
		if userPath, err := configFilePath(false); err == nil {
			v.AddConfigPath(filepath.Dir(userPath))
		}
		if systemPath, err := configFilePath(true); err == nil {
			v.AddConfigPath(filepath.Dir(systemPath))
		}
		v.AddConfigPath(".")
	}
	switch err := v.ReadInConfig(); {
	case err == nil:
		for _, key := range settingKeys {
			if v.IsSet(key) {
				values[key] = v.GetString(key)
			}
		}
	case isConfigFileMissing(err):
		// No config file is fine; defaults and environment apply.
	default:
		return Raw{}, fmt.Errorf("%w: reading config file: %v", errs.ErrConfiguration, err)
	}

	// Environment overlay. LookupEnv keeps variables that are set to the
	// empty string visible as present.
	for _, key := range settingKeys {
		if val, ok := os.LookupEnv(EnvVar(key)); ok {
			values[key] = val
		}
	}

	return Raw{Mode: s.Mode, Values: values}, nil
}

// TestDefaultSource yields the documented test-environment defaults with
// no overrides. Tests use it to get a working snapshot with no setup.
type TestDefaultSource struct{}

// Load implements Source.
func (TestDefaultSource) Load() (Raw, error) {
	return Raw{Mode: ModeTest, Values: map[string]string{}}, nil
}

// configFilePath returns the user or system location of mcard.yaml.
func configFilePath(system bool) (string, error) {
	var configDir string
	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "mcard")
		default:
			configDir = "/etc/mcard"
		}
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(dir, "mcard")
	}
	return filepath.Join(configDir, "mcard.yaml"), nil
}

// fileConfig mirrors the mcard.yaml layout for WriteDefaultConfig.
type fileConfig struct {
	DB struct {
		Engine string `yaml:"engine"`
		Path   string `yaml:"path"`
	} `yaml:"db"`
	Store struct {
		MaxConnections int     `yaml:"max_connections"`
		Timeout        float64 `yaml:"timeout"`
	} `yaml:"store"`
	Hash struct {
		Algorithm string `yaml:"algorithm"`
	} `yaml:"hash"`
}

// WriteDefaultConfig persists a starter mcard.yaml with the production
// defaults to the user (or system) config location and returns the path.
func WriteDefaultConfig(system bool) (string, error) {
	path, err := configFilePath(system)
	if err != nil {
		return "", err
	}

	var c fileConfig
	c.DB.Engine = defaultEngine
	c.DB.Path = defaultDBPathProduction
	c.Store.MaxConnections = defaultMaxConnectionsProduction
	c.Store.Timeout = defaultTimeoutSeconds
	c.Hash.Algorithm = defaultAlgorithm

	data, err := yaml.Marshal(&c)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
