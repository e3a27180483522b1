package config

import "testing"

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv(EnvAddr, ":9090")
	t.Setenv(EnvRuntime, "cuda")
	t.Setenv(EnvBudgetMB, "2048")
	t.Setenv(EnvMarginMB, "128")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvCORS, "yes")
	t.Setenv(EnvOrigins, "http://a, ,http://b")

	cfg, err := ApplyEnv(Config{Addr: ":1", BudgetMB: 1})
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Runtime != "cuda" || cfg.BudgetMB != 2048 || cfg.MarginMB != 128 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if !cfg.CORSEnabled || len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("unexpected cors: %+v", cfg)
	}
}

func TestApplyEnv_KeepsFileValuesWhenUnset(t *testing.T) {
	for _, k := range []string{EnvAddr, EnvRuntime, EnvDevice, EnvBudgetMB, EnvMarginMB, EnvLogLevel, EnvCORS, EnvOrigins} {
		t.Setenv(k, "")
	}
	in := Config{Addr: ":7", Runtime: "host", BudgetMB: 3, CORSEnabled: true}
	cfg, err := ApplyEnv(in)
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Addr != ":7" || cfg.Runtime != "host" || cfg.BudgetMB != 3 || !cfg.CORSEnabled {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestApplyEnv_RejectsMalformedNumbers(t *testing.T) {
	t.Setenv(EnvBudgetMB, "lots")
	if _, err := ApplyEnv(Config{}); err == nil {
		t.Fatalf("expected error for malformed %s", EnvBudgetMB)
	}
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := SplitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}
