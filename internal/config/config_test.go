package config

import (
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":2888" || cfg.SearchDepth != 3 || cfg.SearchTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionIdleTTL != 2*time.Hour {
		t.Fatalf("session ttl default = %v", cfg.SessionIdleTTL)
	}
}

func TestEnvThenFlags(t *testing.T) {
	getenv := env(map[string]string{
		"XIANGQI_ADDR":       ":9000",
		"MOONFISH_DEPTH":     "5",
		"THINKING_TIMEOUT":   "2.5",
		"XIANGQI_LOG_FORMAT": "json",
		"XIANGQI_WEB_DIR":    "-",
	})
	cfg, err := Load([]string{"-depth", "4"}, getenv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.SearchDepth != 4 {
		t.Fatalf("flag should override env: depth = %d", cfg.SearchDepth)
	}
	if cfg.SearchTimeout != 2500*time.Millisecond {
		t.Fatalf("timeout = %v", cfg.SearchTimeout)
	}
	if cfg.LogFormat != "json" || cfg.WebDir != "" {
		t.Fatalf("log format = %q web = %q", cfg.LogFormat, cfg.WebDir)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		env    map[string]string
		errHas string
	}{
		{"depth too high", []string{"-depth", "9"}, nil, "depth"},
		{"bad env depth", nil, map[string]string{"MOONFISH_DEPTH": "deep"}, "MOONFISH_DEPTH"},
		{"bad env timeout", nil, map[string]string{"THINKING_TIMEOUT": "soon"}, "THINKING_TIMEOUT"},
		{"bad log format", []string{"-log-format", "xml"}, nil, "log-format"},
		{"unknown flag", []string{"-model", "x.onnx"}, nil, "model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, env(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.errHas) {
				t.Fatalf("err = %v, want mention of %q", err, tt.errHas)
			}
		})
	}
}
