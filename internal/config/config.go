// Package config 读取服务端配置：默认值 < 环境变量 < 命令行参数。
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	MinSearchDepth = 1
	MaxSearchDepth = 8
)

type Config struct {
	Addr           string
	WebDir         string
	MobileWebDir   string
	SearchDepth    int
	SearchTimeout  time.Duration
	CheckMateDepth int
	TTSize         int
	SessionIdleTTL time.Duration
	LogLevel       string
	LogFormat      string
	OpenBrowser    bool
}

func Default() Config {
	return Config{
		Addr:           ":2888",
		WebDir:         "./web",
		SearchDepth:    3,
		SearchTimeout:  5 * time.Second,
		CheckMateDepth: 7,
		TTSize:         1 << 20,
		SessionIdleTTL: 2 * time.Hour,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// Load 解析 args（不含程序名）。getenv 为 nil 时不读环境变量。
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if getenv != nil {
		if err := cfg.applyEnv(getenv); err != nil {
			return Config{}, err
		}
	}

	fs := flag.NewFlagSet("xiangqi-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.WebDir, "web", cfg.WebDir, "directory with index.html / js / svg (empty disables static files)")
	fs.StringVar(&cfg.MobileWebDir, "web-mobile", cfg.MobileWebDir, "directory with the mobile web assets (defaults to -web)")
	fs.IntVar(&cfg.SearchDepth, "depth", cfg.SearchDepth, "search depth in plies")
	fs.DurationVar(&cfg.SearchTimeout, "timeout", cfg.SearchTimeout, "search time budget per AI move")
	fs.IntVar(&cfg.CheckMateDepth, "mate-depth", cfg.CheckMateDepth, "continuous-check mate search in plies (0 disables)")
	fs.IntVar(&cfg.TTSize, "tt-size", cfg.TTSize, "transposition table entries per search")
	fs.DurationVar(&cfg.SessionIdleTTL, "session-ttl", cfg.SessionIdleTTL, "evict sessions idle longer than this (0 disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console or json")
	fs.BoolVar(&cfg.OpenBrowser, "open", cfg.OpenBrowser, "open the default browser after start")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("XIANGQI_ADDR"); v != "" {
		c.Addr = v
	}
	if v, ok := lookup(getenv, "XIANGQI_WEB_DIR"); ok {
		c.WebDir = v
	}
	if v := getenv("MOONFISH_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MOONFISH_DEPTH: %w", err)
		}
		c.SearchDepth = n
	}
	if v := getenv("THINKING_TIMEOUT"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("THINKING_TIMEOUT: %w", err)
		}
		c.SearchTimeout = d
	}
	if v := getenv("XIANGQI_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("XIANGQI_SESSION_TTL: %w", err)
		}
		c.SessionIdleTTL = d
	}
	if v := getenv("XIANGQI_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("XIANGQI_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

// lookup 区分“未设置”和“设为空”：XIANGQI_WEB_DIR=- 表示不提供静态页面。
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	if v == "" {
		return "", false
	}
	if v == "-" {
		return "", true
	}
	return v, true
}

// parseSeconds 接受 "30"、"2.5"（秒）或 "1m30s"。
func parseSeconds(v string) (time.Duration, error) {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func (c Config) Validate() error {
	var errs []error
	if c.SearchDepth < MinSearchDepth || c.SearchDepth > MaxSearchDepth {
		errs = append(errs, fmt.Errorf("depth must be between %d and %d, got %d", MinSearchDepth, MaxSearchDepth, c.SearchDepth))
	}
	if c.SearchTimeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %v", c.SearchTimeout))
	}
	if c.CheckMateDepth < 0 {
		errs = append(errs, fmt.Errorf("mate-depth must not be negative, got %d", c.CheckMateDepth))
	}
	if c.TTSize <= 0 {
		errs = append(errs, fmt.Errorf("tt-size must be positive, got %d", c.TTSize))
	}
	if c.SessionIdleTTL < 0 {
		errs = append(errs, fmt.Errorf("session-ttl must not be negative, got %v", c.SessionIdleTTL))
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log-format must be console or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
