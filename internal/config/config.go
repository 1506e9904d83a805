// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix, e.g. NIBL_METADATA_ENABLED.
const envPrefix = "NIBL"

// SiteConfig holds the configuration from the site.yaml file.
// The `mapstructure` tags map file keys to struct fields.
type SiteConfig struct {
	Title       string         `mapstructure:"title"`
	Author      string         `mapstructure:"author"`
	BaseURL     string         `mapstructure:"baseurl"`
	Description string         `mapstructure:"description"`
	Template    string         `mapstructure:"template"`
	Metadata    MetadataConfig `mapstructure:"metadata"`
}

// MetadataConfig controls inherited page metadata and the metadata index.
type MetadataConfig struct {
	// Enabled turns on directory metadata, breadcrumbs and the index file.
	Enabled bool `mapstructure:"enabled"`
	// MetaFile is the per-directory metadata declaration name.
	MetaFile string `mapstructure:"meta_file"`
	// NavFile is the per-directory navigation declaration name.
	NavFile string `mapstructure:"nav_file"`
	// IndexFile is written inside the output directory after each build.
	IndexFile string `mapstructure:"index_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("template", "simple")
	v.SetDefault("metadata.enabled", true)
	v.SetDefault("metadata.meta_file", ".meta.yml")
	v.SetDefault("metadata.nav_file", ".pages")
	v.SetDefault("metadata.index_file", "techdocs_metadata.json")
}

// LoadSiteConfig reads the YAML config at path. Environment variables
// prefixed with NIBL override file values.
func LoadSiteConfig(path string) (SiteConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return SiteConfig{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	cfg := SiteConfig{}
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return cfg, nil
}
