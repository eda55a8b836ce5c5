// Package config loads gitscope settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/thiagokokada/gitscope/internal/git"
)

const DefaultFile = ".gitscope.toml"

type Config struct {
	// Backend selects the repository backend: "native" (go-git) or "gitcli".
	Backend        string `toml:"backend"`
	OriginRefsOnly bool   `toml:"origin_refs_only"`

	Reference Reference `toml:"reference"`
	Telemetry Telemetry `toml:"telemetry"`
}

// Reference is the last selected comparison target as persisted by a caller.
type Reference struct {
	SHA            string `toml:"sha"`
	Name           string `toml:"name"`
	Kind           string `toml:"kind"`
	PinToMergeHead bool   `toml:"pin_to_merge_head"`
}

type Telemetry struct {
	// OTLPEndpoint is an OTLP/HTTP collector, e.g. "localhost:4318". Empty
	// disables trace export.
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are not an error.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded", slog.Any("error", err))
	}
}

// Load reads path, if it exists, and applies GITSCOPE_* environment
// overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				slog.Warn("unknown configuration keys", slog.String("file", path), slog.Any("keys", undecoded))
			}
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("no configuration file", slog.String("file", path))
		default:
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	strs := []struct {
		env string
		dst *string
	}{
		{"GITSCOPE_BACKEND", &c.Backend},
		{"GITSCOPE_REFERENCE_SHA", &c.Reference.SHA},
		{"GITSCOPE_REFERENCE_NAME", &c.Reference.Name},
		{"GITSCOPE_REFERENCE_KIND", &c.Reference.Kind},
		{"GITSCOPE_OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.env); ok {
			*s.dst = v
		}
	}
	bools := []struct {
		env string
		dst *bool
	}{
		{"GITSCOPE_PIN_TO_MERGE_HEAD", &c.Reference.PinToMergeHead},
		{"GITSCOPE_ORIGIN_REFS_ONLY", &c.OriginRefsOnly},
	}
	for _, b := range bools {
		v, ok := os.LookupEnv(b.env)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.env, err)
		}
		*b.dst = parsed
	}
	return nil
}

// ComparisonConfig converts the persisted settings into engine input. An
// unusable stored reference yields a config without a reference.
func (c *Config) ComparisonConfig() git.ComparisonConfig {
	cfg := git.ComparisonConfig{
		OriginRefsOnly: c.OriginRefsOnly,
		PinToMergeHead: c.Reference.PinToMergeHead,
	}
	if ref, ok := git.ReferenceFromSettings(c.Reference.settings()); ok {
		cfg.Reference = ref
	}
	return cfg
}

func (r Reference) settings() git.Settings {
	return git.Settings{SHA: r.SHA, Name: r.Name, Kind: r.Kind, Pin: r.PinToMergeHead}
}
