// Package config declares the settings that control how a suite names,
// unpacks and attaches its generated tests.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CatConfLang/ddt/loader"
	"github.com/CatConfLang/ddt/naming"
	"github.com/CatConfLang/ddt/params"
)

// Config holds suite-wide generation settings
type Config struct {
	// Name format for every set on the suite
	NameFormat naming.Format `json:"name_format" yaml:"name_format"`

	// Extra unpack depth applied to every set
	UnpackAll int `json:"unpack_all,omitempty" yaml:"unpack_all,omitempty"`

	// What happens when two cases compose the same name
	DuplicateNames DuplicatePolicy `json:"duplicate_names,omitempty" yaml:"duplicate_names,omitempty"`

	// Text encoding of data files that do not name one; empty leaves it
	// to the loader (utf-8 unless a custom loader says otherwise)
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`

	// List element key that names a data file entry
	NameField string `json:"name_field,omitempty" yaml:"name_field,omitempty"`

	// How the sets of one template combine
	Combine CombineMode `json:"combine,omitempty" yaml:"combine,omitempty"`
}

// CombineMode represents type-safe set combination strategies
type CombineMode string

const (
	// CombineProduct pairs every entry of each set with every entry of the others.
	CombineProduct CombineMode = "product"
	// CombineUnion expands each set on its own; cases are the sets' entries in turn.
	CombineUnion CombineMode = "union"
)

// AllCombineModes returns all valid combination modes
func AllCombineModes() []CombineMode {
	return []CombineMode{
		CombineProduct,
		CombineUnion,
	}
}

// DuplicatePolicy represents type-safe duplicate name handling
type DuplicatePolicy string

const (
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	DuplicateError     DuplicatePolicy = "error"
)

// AllDuplicatePolicies returns all valid duplicate policies
func AllDuplicatePolicies() []DuplicatePolicy {
	return []DuplicatePolicy{
		DuplicateOverwrite,
		DuplicateError,
	}
}

// Default returns the settings used when a suite is given no config
func Default() Config {
	return Config{
		NameFormat:     naming.FormatDefault,
		DuplicateNames: DuplicateOverwrite,
		NameField:      params.DefaultNameField,
		Combine:        CombineProduct,
	}
}

// Validate checks the configuration for values no suite can use
func (c Config) Validate() error {
	switch c.NameFormat {
	case naming.FormatDefault, naming.FormatIndexOnly:
	default:
		return &ConfigError{
			Type:    "invalid_name_format",
			Message: fmt.Sprintf("unknown name format %d", int(c.NameFormat)),
		}
	}

	if c.UnpackAll < 0 {
		return &ConfigError{
			Type:    "invalid_unpack_all",
			Message: fmt.Sprintf("unpack depth must not be negative, got %d", c.UnpackAll),
		}
	}

	if c.DuplicateNames != "" && !c.HasDuplicatePolicy(c.DuplicateNames) {
		return &ConfigError{
			Type:    "invalid_duplicate_policy",
			Message: "unknown duplicate name policy: " + string(c.DuplicateNames),
		}
	}

	if c.Combine != "" && !c.HasCombineMode(c.Combine) {
		return &ConfigError{
			Type:    "invalid_combine_mode",
			Message: "unknown combine mode: " + string(c.Combine),
		}
	}

	if err := loader.CheckEncoding(c.Encoding); err != nil {
		return &ConfigError{
			Type:    "unsupported_encoding",
			Message: err.Error(),
		}
	}

	return nil
}

// HasDuplicatePolicy checks if policy is a known duplicate policy
func (c Config) HasDuplicatePolicy(policy DuplicatePolicy) bool {
	for _, known := range AllDuplicatePolicies() {
		if known == policy {
			return true
		}
	}
	return false
}

// HasCombineMode checks if mode is a known combination mode
func (c Config) HasCombineMode(mode CombineMode) bool {
	for _, known := range AllCombineModes() {
		if known == mode {
			return true
		}
	}
	return false
}

// ConfigError represents configuration validation errors
type ConfigError struct {
	Type    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Type + ": " + e.Message
}

// Load reads a YAML or JSON config file. Fields the file omits keep their
// Default values, and unknown fields are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}
