package config

import (
	"strings"
	"testing"
	"time"

	"github.com/thibequation/trajectory/internal/core"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Import: ImportConfig{
			ValidatePhysics: true,
			MaxPoints:       10,
			SupportedTypes:  []string{"deterministic"},
			VelocityUnit:    "mps",
			MaxFileSize:     1024,
			MaxConcurrent:   2,
			MaxWait:         time.Second,
		},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 100, ImportLimit: 10},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if !cfg.Import.ValidatePhysics || cfg.Import.StrictPhysics || !cfg.Import.AutoNormalize || cfg.Import.Interpolate {
		t.Errorf("Import flags = %+v", cfg.Import)
	}
	if cfg.Import.MaxPoints != 10000 {
		t.Errorf("Import.MaxPoints = %d, want %d", cfg.Import.MaxPoints, 10000)
	}
	if cfg.Import.MaxFileSize != 52428800 {
		t.Errorf("Import.MaxFileSize = %d, want %d", cfg.Import.MaxFileSize, 52428800)
	}
	if cfg.Import.MaxConcurrent != 4 || cfg.Import.MaxWait != 10*time.Second {
		t.Errorf("Import limiter = %d/%v, want 4/10s", cfg.Import.MaxConcurrent, cfg.Import.MaxWait)
	}
	if len(cfg.Security.TrustedProxies) != 0 {
		t.Errorf("Security.TrustedProxies = %v, want empty", cfg.Security.TrustedProxies)
	}
	if len(cfg.Import.SupportedTypes) != 3 {
		t.Errorf("Import.SupportedTypes = %v", cfg.Import.SupportedTypes)
	}
	if cfg.Import.VelocityUnit != "mps" {
		t.Errorf("Import.VelocityUnit = %q", cfg.Import.VelocityUnit)
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TRAJ_MAX_POINTS", "500")
	t.Setenv("TRAJ_AUTO_NORMALIZE", "false")
	t.Setenv("TRAJ_VELOCITY_UNIT", "kmps")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Import.MaxPoints != 500 {
		t.Errorf("Import.MaxPoints = %d, want %d", cfg.Import.MaxPoints, 500)
	}
	if cfg.Import.AutoNormalize {
		t.Error("Import.AutoNormalize = true, want false")
	}
	if cfg.Import.VelocityUnit != "kmps" {
		t.Errorf("Import.VelocityUnit = %q", cfg.Import.VelocityUnit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7070)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TRAJ_MAX_POINTS", "lots")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "TRAJ_MAX_POINTS") {
		t.Fatalf("Load() error = %v, want invalid TRAJ_MAX_POINTS", err)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Server.RequestTimeout != 90*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want %v", cfg.Server.RequestTimeout, 90*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRAJ_SUPPORTED_TYPES", "deterministic, monte_carlo ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	kinds, err := cfg.Import.Kinds()
	if err != nil {
		t.Fatalf("Kinds() error = %v", err)
	}
	expected := []core.Kind{core.KindDeterministic, core.KindMonteCarlo}
	if len(kinds) != len(expected) {
		t.Fatalf("Kinds() = %v, want %v", kinds, expected)
	}
	for i, k := range expected {
		if kinds[i] != k {
			t.Errorf("Kinds()[%d] = %q, want %q", i, kinds[i], k)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 99999 }, wantErr: "SERVER_PORT"},
		{name: "zero max points", mutate: func(c *Config) { c.Import.MaxPoints = 0 }, wantErr: "TRAJ_MAX_POINTS"},
		{name: "unknown type", mutate: func(c *Config) { c.Import.SupportedTypes = []string{"radar"} }, wantErr: "TRAJ_SUPPORTED_TYPES"},
		{name: "no types", mutate: func(c *Config) { c.Import.SupportedTypes = nil }, wantErr: "TRAJ_SUPPORTED_TYPES"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Import.MaxConcurrent = 0 }, wantErr: "TRAJ_MAX_CONCURRENT"},
		{name: "zero import wait", mutate: func(c *Config) { c.Import.MaxWait = 0 }, wantErr: "TRAJ_IMPORT_WAIT"},
		{name: "unknown unit", mutate: func(c *Config) { c.Import.VelocityUnit = "mph" }, wantErr: "TRAJ_VELOCITY_UNIT"},
		{name: "strict without validation", mutate: func(c *Config) {
			c.Import.StrictPhysics = true
			c.Import.ValidatePhysics = false
		}, wantErr: "TRAJ_STRICT_PHYSICS"},
		{name: "api key required but empty", mutate: func(c *Config) { c.Security.RequireAPIKey = true }, wantErr: "API_KEYS"},
		{name: "invalid log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: "LOG_LEVEL"},
		{name: "invalid log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestAdapterOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Import.StrictPhysics = true
	cfg.Import.SupportedTypes = []string{"quantiles", "monte-carlo"}

	opts, err := cfg.Import.AdapterOptions()
	if err != nil {
		t.Fatalf("AdapterOptions() error = %v", err)
	}
	if !opts.ValidatePhysics || !opts.StrictPhysics || opts.MaxPoints != 10 || opts.VelocityUnit != "mps" {
		t.Errorf("options = %+v", opts)
	}
	if len(opts.SupportedTypes) != 2 || opts.SupportedTypes[0] != core.KindQuantiles {
		t.Errorf("SupportedTypes = %v", opts.SupportedTypes)
	}

	if _, err := core.NewAdapter(opts, nil); err != nil {
		t.Errorf("options rejected by adapter: %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksAPIKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Security.APIKeys = []string{"super-secret-key"}

	str := cfg.String()
	if strings.Contains(str, "super-secret-key") {
		t.Error("String() should mask API keys")
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}

func mapLookup(env map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}

func TestLoadFrom_ReportsEveryBadVariable(t *testing.T) {
	_, err := LoadFrom(mapLookup(map[string]string{
		"SERVER_PORT":         "http",
		"SERVER_IDLE_TIMEOUT": "forever",
		"TRAJ_MAX_FILE_SIZE":  "huge",
	}))
	if err == nil {
		t.Fatal("LoadFrom() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "SERVER_IDLE_TIMEOUT", "TRAJ_MAX_FILE_SIZE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestLoadFrom_BlankFallsBackToDefault(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(map[string]string{
		"SERVER_PORT":        "  ",
		"TRAJ_MAX_FILE_SIZE": "512kb",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Import.MaxFileSize != 512*1024 {
		t.Errorf("Import.MaxFileSize = %d, want %d", cfg.Import.MaxFileSize, 512*1024)
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		in      string
		want    ByteSize
		wantErr bool
	}{
		{in: "1024", want: 1024},
		{in: "10B", want: 10},
		{in: "2KB", want: 2048},
		{in: "50MB", want: 50 << 20},
		{in: " 1 gb ", want: 1 << 30},
		{in: "MB", wantErr: true},
		{in: "-1KB", wantErr: true},
		{in: "1.5MB", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseByteSize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseByteSize(%q) = %d, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseByteSize(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseByteSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
