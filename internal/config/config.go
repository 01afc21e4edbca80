package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/blackwell-systems/minerva/internal/util"
)

// configType is the viper format of ~/.libraryrc: key=value lines.
const configType = "properties"

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".libraryrc")
}

// ResolvePath returns path, or $MINERVA_CONFIG, or DefaultPath.
func ResolvePath(path string) string {
	if path != "" {
		return util.ExpandHome(path)
	}
	if env := os.Getenv("MINERVA_CONFIG"); env != "" {
		return util.ExpandHome(env)
	}
	return DefaultPath()
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType(configType)

	v.SetDefault("db_path", defaultDBPath)
	v.SetDefault("lookup_base_url", defaultLookupBaseURL)
	v.SetDefault("cover_base_url", defaultCoverBaseURL)
	v.SetDefault("cache_dir", defaultCacheDir)
	v.SetDefault("http_timeout", defaultHTTPTimeout)

	v.SetEnvPrefix("MINERVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config at path (see ResolvePath). A missing file yields
// the defaults; the init command creates it.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(ResolvePath(path))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.DBPath = util.ExpandHome(cfg.DBPath)
	cfg.CacheDir = util.ExpandHome(cfg.CacheDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path (see ResolvePath).
func Save(path string, cfg *Config) error {
	path = ResolvePath(path)
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.Set("db_path", cfg.DBPath)
	v.Set("lookup_base_url", cfg.LookupBaseURL)
	v.Set("cover_base_url", cfg.CoverBaseURL)
	v.Set("cache_dir", cfg.CacheDir)
	v.Set("http_timeout", cfg.HTTPTimeout.String())

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
