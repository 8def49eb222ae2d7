// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package config loads outputter settings from files and the environment.
//
// A settings file is YAML if its name ends in ".yaml" or ".yml", and JSON
// otherwise. JSON files may contain comments and trailing commas. After the
// file is read, any of the following environment variables that are set
// override the corresponding field:
//
//	JSONOUT_MODE                   FULL, NETWORK, or STORAGE
//	JSONOUT_OUTPUT_DEFAULT_VALUES  true or false
//	JSONOUT_OUTPUT_HASH            true or false
//	JSONOUT_ROLL_HASHES            true or false
//	JSONOUT_HASH_ALGORITHM         e.g., SHA-256
//	JSONOUT_LOG_LEVEL              debug, info, warn, or error
//	JSONOUT_LOG_FORMAT             text or json
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/creachadair/jsonout"
	"github.com/hengadev/errsx"
	"github.com/joeshaw/envdecode"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Config holds the settings for an outputter and its logger.
type Config struct {
	Mode                string `yaml:"mode" json:"mode" env:"JSONOUT_MODE"`
	OutputDefaultValues bool   `yaml:"output_default_values" json:"output_default_values" env:"JSONOUT_OUTPUT_DEFAULT_VALUES"`
	OutputHash          bool   `yaml:"output_hash" json:"output_hash" env:"JSONOUT_OUTPUT_HASH"`
	RollHashes          bool   `yaml:"roll_hashes" json:"roll_hashes" env:"JSONOUT_ROLL_HASHES"`
	HashAlgorithm       string `yaml:"hash_algorithm" json:"hash_algorithm" env:"JSONOUT_HASH_ALGORITHM"`
	LogLevel            string `yaml:"log_level" json:"log_level" env:"JSONOUT_LOG_LEVEL"`
	LogFormat           string `yaml:"log_format" json:"log_format" env:"JSONOUT_LOG_FORMAT"`
}

// Default returns the default settings.
func Default() Config {
	return Config{
		Mode:          jsonout.Full.String(),
		HashAlgorithm: jsonout.DefaultAlgorithm,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load returns the default settings, updated from the file at path and then
// from the environment. If path == "", only the environment is consulted.
// The result is validated before it is returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		if err := cfg.decode(data, filepath.Ext(path)); err != nil {
			return Config{}, fmt.Errorf("load config %q: %w", path, err)
		}
	}
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode updates c from data, which is YAML if ext is ".yaml" or ".yml", and
// JSON with optional comments otherwise. Unknown fields are an error.
func (c *Config) decode(data []byte, ext string) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && err != io.EOF {
			return err
		}
		return nil
	default:
		std, err := hujson.Standardize(data)
		if err != nil {
			return err
		}
		dec := json.NewDecoder(bytes.NewReader(std))
		dec.DisallowUnknownFields()
		return dec.Decode(c)
	}
}

// Validate reports an error for each invalid setting in c. The error is an
// errsx.Map keyed by field name.
func (c Config) Validate() error {
	var errs errsx.Map
	if _, err := jsonout.ParseMode(c.Mode); err != nil {
		errs.Set("mode", err)
	}
	if c.HashAlgorithm != "" {
		if err := jsonout.CheckAlgorithm(c.HashAlgorithm); err != nil {
			errs.Set("hash_algorithm", err)
		}
	}
	if _, err := c.level(); err != nil {
		errs.Set("log_level", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs.Set("log_format", fmt.Sprintf("unknown log format %q", c.LogFormat))
	}
	if errs.IsEmpty() {
		return nil
	}
	return errs.AsError()
}

func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl, err
}

// Options returns outputter options for c, which log to lg.
func (c Config) Options(lg *slog.Logger) (*jsonout.Options, error) {
	mode, err := jsonout.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}
	return &jsonout.Options{
		Mode:                mode,
		OutputDefaultValues: c.OutputDefaultValues,
		OutputHash:          c.OutputHash,
		RollHashes:          c.RollHashes,
		HashAlgorithm:       c.HashAlgorithm,
		Logger:              lg,
	}, nil
}

// Logger returns a logger that writes to w with the level and format of c.
// Invalid settings fall back to info level and text format.
func (c Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}
