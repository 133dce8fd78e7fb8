package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/tagnorm/pkg/dict"
	"github.com/hazyhaar/tagnorm/pkg/tags"
	"github.com/spf13/viper"
)

type config struct {
	Addr          string        `mapstructure:"addr"`
	DictsDir      string        `mapstructure:"dicts_dir"`
	Include       []string      `mapstructure:"include"`
	Exclude       []string      `mapstructure:"exclude"`
	Fold          string        `mapstructure:"fold"`
	Watch         bool          `mapstructure:"watch"`
	TagsDB        string        `mapstructure:"tags_db"`
	SourcesDB     string        `mapstructure:"sources_db"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	QUIC          bool          `mapstructure:"quic"`
	CertFile      string        `mapstructure:"cert_file"`
	KeyFile       string        `mapstructure:"key_file"`
	LogLevel      string        `mapstructure:"log_level"`
}

// loadConfig reads path (a missing file is fine) and applies TAGNORM_*
// environment overrides on top of the defaults.
func loadConfig(path string) (*config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8420")
	v.SetDefault("dicts_dir", "dicts")
	v.SetDefault("include", []string{})
	v.SetDefault("exclude", []string{})
	v.SetDefault("fold", tags.FoldNone)
	v.SetDefault("watch", true)
	v.SetDefault("tags_db", "tags.db")
	v.SetDefault("sources_db", "dicts/sources.db")
	v.SetDefault("check_interval", 24*time.Hour)
	v.SetDefault("quic", false)
	v.SetDefault("cert_file", "")
	v.SetDefault("key_file", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("TAGNORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Fold != tags.FoldNone && cfg.Fold != tags.FoldASCII {
		return nil, fmt.Errorf("fold: unknown mode %q (want %s or %s)", cfg.Fold, tags.FoldNone, tags.FoldASCII)
	}
	return &cfg, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// openRegistry builds the dictionary registry from config and loads it.
func (a *app) openRegistry() (*dict.Registry, error) {
	reg := dict.NewRegistry(a.cfg.DictsDir,
		dict.WithInclude(a.cfg.Include...),
		dict.WithExclude(a.cfg.Exclude...),
		dict.WithFold(tags.GetFolder(a.cfg.Fold)),
		dict.WithLogger(a.logger),
	)
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("load dictionaries: %w", err)
	}
	return reg, nil
}
