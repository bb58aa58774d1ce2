package pipeline

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/stickerpack/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. STICKERPACK_OUTPUT.
const EnvPrefix = "STICKERPACK_"

// DefaultConfigFile is read when no config file is given and it exists.
const DefaultConfigFile = "stickerpack.toml"

// LoadOptions reads options from the TOML file at path, then applies
// STICKERPACK_* environment overrides. An empty path reads DefaultConfigFile
// if present. Unknown TOML keys are rejected. Defaults are not applied.
func LoadOptions(path string) (*Options, error) {
	var opts Options
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &opts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}
	if err := ApplyEnv(&opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// ApplyEnv overrides opts with STICKERPACK_* environment variables.
func ApplyEnv(opts *Options) error {
	if err := env.ParseWithOptions(opts, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read environment")
	}
	return nil
}

// ApplyEnvFrom is ApplyEnv reading from the given variables instead of the
// process environment.
func ApplyEnvFrom(opts *Options, vars map[string]string) error {
	if err := env.ParseWithOptions(opts, env.Options{Prefix: EnvPrefix, Environment: vars}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read environment")
	}
	return nil
}
