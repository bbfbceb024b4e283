package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/logger"
	"github.com/Bitlatte/folio/internal/post"
	"github.com/Bitlatte/folio/internal/web"
)

// EnvPrefix prefixes every environment override, e.g. FOLIO_SERVER_ADDRESS.
const EnvPrefix = "FOLIO"

type Config struct {
	SiteTitle  string `mapstructure:"siteTitle"`
	OutputDir  string `mapstructure:"outputDir"`
	BaseURL    string `mapstructure:"baseURL"`
	DateLayout string `mapstructure:"dateLayout"`

	Server  web.Config       `mapstructure:"server"`
	Content content.Config   `mapstructure:"content"`
	Redis   post.RedisConfig `mapstructure:"redis"`
	Log     logger.Config    `mapstructure:"log"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("siteTitle", "Meu Blog")
	v.SetDefault("outputDir", "public")
	v.SetDefault("baseURL", "")
	v.SetDefault("dateLayout", "02/01/2006")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdownTimeout", "10s")

	v.SetDefault("content.source", content.SourceBuiltin)
	v.SetDefault("content.dir", "content")
	v.SetDefault("content.file", "posts.yaml")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "folio")
	v.SetDefault("redis.requestTimeout", "2s")
	v.SetDefault("redis.maxRetries", 3)
	v.SetDefault("redis.retryInterval", "50ms")
	v.SetDefault("redis.seed", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads cfgFile, or ./folio.yaml when cfgFile is empty, then applies
// environment overrides. A missing default file is not an error; used is the
// path of the file that was read, or "" when none was.
func Load(v *viper.Viper, cfgFile string) (cfg Config, used string, err error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("folio")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return Config{}, "", fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, used, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return cfg, used, nil
}
