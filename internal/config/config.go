package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata" // app.timezone must resolve on hosts without zoneinfo

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Product struct {
	Name  string `mapstructure:"name"`
	Stock int64  `mapstructure:"stock"`
	Unit  string `mapstructure:"unit"`
}

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Postgres struct {
		Enabled bool
		DSN     string
	} `mapstructure:"postgres"`

	Telegram struct {
		Token   string
		Timeout int
	} `mapstructure:"telegram"`

	Catalog struct {
		Products []Product
	} `mapstructure:"catalog"`
}

// Location resolves app.timezone; an empty value means the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.App.Timezone)
}

// Load reads .env (if present) into the environment and then the YAML file
// at path. Any key can be overridden with APP_<SECTION>_<KEY>.
func Load(path string) (Config, error) {
	var c Config
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "prod")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("telegram.timeout", 30)
	// bind keys without a file default so AutomaticEnv can see them
	for _, k := range []string{"app.timezone", "postgres.enabled", "postgres.dsn", "telegram.token"} {
		_ = v.BindEnv(k)
	}

	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if c.Postgres.Enabled && c.Postgres.DSN == "" {
		return c, errors.New("config: postgres.enabled requires postgres.dsn")
	}
	return c, nil
}
