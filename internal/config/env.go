package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvAddr     = "DEVMEM_ADDR"
	EnvRuntime  = "DEVMEM_RUNTIME"
	EnvDevice   = "DEVMEM_DEVICE"
	EnvBudgetMB = "DEVMEM_BUDGET_MB"
	EnvMarginMB = "DEVMEM_MARGIN_MB"
	EnvLogLevel = "DEVMEM_LOG_LEVEL"
	EnvCORS     = "DEVMEM_CORS_ENABLED"
	EnvOrigins  = "DEVMEM_CORS_ALLOWED_ORIGINS"
)

// ApplyEnv overrides cfg with any DEVMEM_* variables that are set. A variable
// holding a malformed number is reported rather than ignored.
func ApplyEnv(cfg Config) (Config, error) {
	cfg.Addr = envStr(EnvAddr, cfg.Addr)
	cfg.Runtime = envStr(EnvRuntime, cfg.Runtime)
	cfg.Device = envStr(EnvDevice, cfg.Device)
	cfg.LogLevel = envStr(EnvLogLevel, cfg.LogLevel)
	cfg.CORSEnabled = envBool(EnvCORS, cfg.CORSEnabled)
	if v := envStr(EnvOrigins, ""); v != "" {
		cfg.CORSAllowedOrigins = SplitCSV(v)
	}
	var err error
	if cfg.BudgetMB, err = envInt(EnvBudgetMB, cfg.BudgetMB); err != nil {
		return cfg, err
	}
	if cfg.MarginMB, err = envInt(EnvMarginMB, cfg.MarginMB); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping
// empty items.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return def, fmt.Errorf("%s=%q: not an integer", key, v)
	}
	return n, nil
}
