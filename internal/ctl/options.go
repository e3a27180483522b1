package ctl

import (
	"fmt"

	"github.com/spf13/cobra"

	"devmem/internal/common/fsutil"
	"devmem/internal/config"
)

// Options collects the persistent flags shared by every subcommand.
type Options struct {
	ConfigPath string
	Runtime    string
	Device     string
	BudgetMB   int
	MarginMB   int
	LogLevel   string
	JSON       bool
}

// defaultConfigCandidates are tried in order when --config is not given.
var defaultConfigCandidates = []string{
	"devmem.yaml",
	"devmem.toml",
	"devmem.json",
	"~/.config/devmem/config.yaml",
	"~/.config/devmem/config.toml",
}

// resolve merges config file, environment and explicitly set flags, in that
// order of precedence from lowest to highest.
func (o *Options) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	path := o.ConfigPath
	if path == "" {
		path = fsutil.FirstExisting(defaultConfigCandidates...)
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg, err := config.ApplyEnv(cfg)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("runtime") {
		cfg.Runtime = o.Runtime
	}
	if flags.Changed("device") {
		cfg.Device = o.Device
	}
	if flags.Changed("budget-mb") {
		cfg.BudgetMB = o.BudgetMB
	}
	if flags.Changed("margin-mb") {
		cfg.MarginMB = o.MarginMB
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	return cfg.WithDefaults(), nil
}
