package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	DB          DBConfig          `mapstructure:"db"`
	Cron        CronConfig        `mapstructure:"cron"`
	Snapshots   SnapshotsConfig   `mapstructure:"snapshots"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

// CronConfig holds the six-field schedule specs for the snapshot jobs. All
// specs run on the scheduler's local clock, which the server pins to UTC.
type CronConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	DailySnapshot   string `mapstructure:"daily_snapshot"`
	WeeklySnapshot  string `mapstructure:"weekly_snapshot"`
	MonthlySnapshot string `mapstructure:"monthly_snapshot"`
	Cleanup         string `mapstructure:"cleanup"`
	Health          string `mapstructure:"health"`
}

type SnapshotsConfig struct {
	RetentionDailyDays   int `mapstructure:"retention_daily_days"`
	RetentionWeeklyWeeks int `mapstructure:"retention_weekly_weeks"`
}

type LeaderboardConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.daily_snapshot", "0 0 0 * * *")
	v.SetDefault("cron.weekly_snapshot", "0 0 0 * * 1")
	v.SetDefault("cron.monthly_snapshot", "0 0 0 1 * *")
	v.SetDefault("cron.cleanup", "0 0 3 * * 0")
	v.SetDefault("cron.health", "0 0 * * * *")
	v.SetDefault("snapshots.retention_daily_days", 90)
	v.SetDefault("snapshots.retention_weekly_weeks", 52)
	v.SetDefault("leaderboard.default_limit", 50)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
