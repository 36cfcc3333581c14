package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/thibequation/trajectory/internal/units"
)

// LookupFunc resolves one environment variable. os.LookupEnv is the default.
type LookupFunc func(name string) (string, bool)

// Load reads configuration from the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load over an arbitrary variable source. Every malformed
// variable is reported, not only the first.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	l := loader{lookup: lookup}
	l.walk(reflect.ValueOf(cfg).Elem())
	if len(l.errs) > 0 {
		return nil, fmt.Errorf("config load: %w", errors.Join(l.errs...))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

type loader struct {
	lookup LookupFunc
	errs   []error
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	byteSizeType = reflect.TypeOf(ByteSize(0))
)

// walk fills every tagged field of v, descending into section structs.
func (l *loader) walk(v reflect.Value) {
	t := v.Type()
	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			l.walk(fv)
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := l.value(name, sf.Tag.Get("envAlt"))
		if !ok {
			raw = sf.Tag.Get("default")
		}
		if raw == "" {
			continue
		}
		if err := assign(fv, raw); err != nil {
			l.errs = append(l.errs, fmt.Errorf("%s=%q: %w", name, raw, err))
		}
	}
}

// value returns the first non-empty of the primary and alternate variables.
func (l *loader) value(name, alt string) (string, bool) {
	for _, n := range []string{name, alt} {
		if n == "" {
			continue
		}
		if s, ok := l.lookup(n); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

func assign(fv reflect.Value, raw string) error {
	switch fv.Type() {
	case durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return errors.New("not a duration")
		}
		fv.SetInt(int64(d))
		return nil
	case byteSizeType:
		n, err := ParseByteSize(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(n))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errors.New("not an integer")
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("not a boolean")
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list of %s", fv.Type().Elem())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ByteSize is a size in bytes that may be written with a binary suffix.
type ByteSize int64

var byteSuffixes = []struct {
	suffix string
	mult   int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseByteSize accepts a plain byte count or a count with a KB, MB or GB
// suffix (powers of 1024, case-insensitive).
func ParseByteSize(raw string) (ByteSize, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	mult := int64(1)
	for _, bs := range byteSuffixes {
		if strings.HasSuffix(s, bs.suffix) {
			s, mult = strings.TrimSpace(strings.TrimSuffix(s, bs.suffix)), bs.mult
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("not a byte size: %q", raw)
	}
	return ByteSize(n * mult), nil
}

// Validate checks cross-field constraints and reports every violation.
func (c *Config) Validate() error {
	var p problems

	p.check(c.Server.Port > 0 && c.Server.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	p.check(c.Server.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	p.check(c.Import.MaxPoints > 0, "TRAJ_MAX_POINTS must be positive")
	p.check(c.Import.MaxFileSize > 0, "TRAJ_MAX_FILE_SIZE must be positive")
	p.check(c.Import.MaxConcurrent > 0, "TRAJ_MAX_CONCURRENT must be positive")
	p.check(c.Import.MaxWait > 0, "TRAJ_IMPORT_WAIT must be positive")
	if len(c.Import.SupportedTypes) == 0 {
		p.add("TRAJ_SUPPORTED_TYPES must list at least one type")
	} else if _, err := c.Import.Kinds(); err != nil {
		p.add("TRAJ_SUPPORTED_TYPES: %v", err)
	}
	p.check(units.IsValid(c.Import.VelocityUnit), "TRAJ_VELOCITY_UNIT (%q) must be one of: %s",
		c.Import.VelocityUnit, units.GetValidUnitsString())
	p.check(!c.Import.StrictPhysics || c.Import.ValidatePhysics,
		"TRAJ_STRICT_PHYSICS requires TRAJ_VALIDATE_PHYSICS")

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.ImportLimit > 0, "RATE_LIMIT_IMPORT must be positive when rate limiting is enabled")
	}

	p.check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is set but API_KEYS is empty")

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.add("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.add("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	return p.err()
}

type problems []string

func (p *problems) add(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		p.add(format, args...)
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
}

// String renders the config for logging. API keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config{Server: {Addr: %s, RequestTimeout: %v}, ", c.Server.Addr(), c.Server.RequestTimeout)
	fmt.Fprintf(&b, "Import: {Types: %v, Unit: %s, ValidatePhysics: %v, StrictPhysics: %v, AutoNormalize: %v, ",
		c.Import.SupportedTypes, c.Import.VelocityUnit, c.Import.ValidatePhysics,
		c.Import.StrictPhysics, c.Import.AutoNormalize)
	fmt.Fprintf(&b, "MaxPoints: %d, MaxFileSize: %d, MaxConcurrent: %d, MaxWait: %v}, ",
		c.Import.MaxPoints, c.Import.MaxFileSize, c.Import.MaxConcurrent, c.Import.MaxWait)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, PerMinute: %d, Import: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.ImportLimit)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: [MASKED x%d], CSP: %v, TrustedProxies: %v}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys), c.Security.EnableCSP, c.Security.TrustedProxies)
	fmt.Fprintf(&b, "Logging: {Level: %s, Format: %s}}", c.Logging.Level, c.Logging.Format)
	return b.String()
}
