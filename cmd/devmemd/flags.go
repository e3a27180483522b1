package main

import (
	"flag"
	"fmt"
	"io"

	"devmem/internal/config"
)

// loadConfig resolves the daemon configuration: file, then DEVMEM_*
// environment, then flags that were set explicitly.
func loadConfig(args []string, errOut io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("devmemd", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "Config file (.yaml, .toml or .json)")
	addr := fs.String("addr", config.DefaultAddr, "HTTP listen address, e.g. :8080 (defaults DEVMEM_ADDR)")
	runtimeName := fs.String("runtime", config.DefaultRuntime, "Device runtime: host|cuda (defaults DEVMEM_RUNTIME)")
	device := fs.String("device", "", "Device label for the host runtime")
	budgetMB := fs.Int("budget-mb", 0, "Allocation budget in MB for the host runtime (0=unlimited)")
	marginMB := fs.Int("margin-mb", 0, "Reserved margin in MB kept free from the budget")
	logLevel := fs.String("log-level", config.DefaultLogLevel, "Log level: debug|info|warn|error")
	reqLogLevel := fs.String("request-log-level", "off", "Per-request HTTP logging: off|error|info|debug")
	maxQueue := fs.Int("max-queue-depth", 0, "Probes allowed to wait for the device (0=default)")
	maxWaitMS := fs.Int("max-wait-ms", 0, "Max admission wait per stage in milliseconds (0=default)")
	maxElems := fs.Int("max-elems", 0, "Largest element count a probe may request (0=default)")
	probeTimeoutMS := fs.Int("probe-timeout-ms", 0, "Per-request probe timeout in milliseconds (0=none)")
	corsEnabled := fs.Bool("cors", false, "Enable CORS")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed origins")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if fs.NArg() > 0 {
		return config.Config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var cfg config.Config
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg, err := config.ApplyEnv(cfg)
	if err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "runtime":
			cfg.Runtime = *runtimeName
		case "device":
			cfg.Device = *device
		case "budget-mb":
			cfg.BudgetMB = *budgetMB
		case "margin-mb":
			cfg.MarginMB = *marginMB
		case "log-level":
			cfg.LogLevel = *logLevel
		case "request-log-level":
			cfg.RequestLogLevel = *reqLogLevel
		case "max-queue-depth":
			cfg.MaxQueueDepth = *maxQueue
		case "max-wait-ms":
			cfg.MaxWaitMS = *maxWaitMS
		case "max-elems":
			cfg.MaxElems = *maxElems
		case "probe-timeout-ms":
			cfg.ProbeTimeoutMS = *probeTimeoutMS
		case "cors":
			cfg.CORSEnabled = *corsEnabled
		case "cors-origins":
			cfg.CORSAllowedOrigins = config.SplitCSV(*corsOrigins)
		}
	})
	return cfg.WithDefaults(), nil
}
