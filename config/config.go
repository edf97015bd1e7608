package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither the flag nor MEMGUARD_CONFIG name a file.
const DefaultPath = "config.toml"

const bytesPerGB = 1024 * 1024 * 1024

// ErrInvalid marks a configuration that must not reach the monitor.
var ErrInvalid = errors.New("invalid configuration")

// Config is the validated, immutable configuration handed to the monitor.
type Config struct {
	Path string

	RAMPercentThreshold float64
	RAMGBThreshold      float64
	CheckInterval       time.Duration

	WhitelistPIDs  map[int32]struct{}
	WhitelistNames []string // lower-cased substrings
	WhitelistUsers map[string]struct{}

	DryRun       bool
	LogFile      string
	EnableSyslog bool
	LogLevel     string
}

// document mirrors the on-disk layout. Pointers let us tell a missing key
// from a zero value.
type document struct {
	Thresholds *struct {
		RAMPercentThreshold *float64 `toml:"ram_percent_threshold" yaml:"ram_percent_threshold"`
		RAMGBThreshold      *float64 `toml:"ram_gb_threshold" yaml:"ram_gb_threshold"`
		CheckInterval       *float64 `toml:"check_interval" yaml:"check_interval"`
	} `toml:"thresholds" yaml:"thresholds"`
	Whitelist *struct {
		PIDs  *[]int64  `toml:"pids" yaml:"pids"`
		Names *[]string `toml:"names" yaml:"names"`
		Users *[]string `toml:"users" yaml:"users"`
	} `toml:"whitelist" yaml:"whitelist"`
	Settings *struct {
		DryRun       *bool   `toml:"dry_run" yaml:"dry_run"`
		LogFile      *string `toml:"log_file" yaml:"log_file"`
		EnableSyslog *bool   `toml:"enable_syslog" yaml:"enable_syslog"`
		LogLevel     string  `toml:"log_level" yaml:"log_level"`
	} `toml:"settings" yaml:"settings"`
}

// RAMBytesThreshold is RAMGBThreshold in bytes.
func (c *Config) RAMBytesThreshold() uint64 {
	return uint64(c.RAMGBThreshold * bytesPerGB)
}

// ResolvePath picks the config file: explicit flag, then MEMGUARD_CONFIG,
// then DefaultPath. It loads an optional .env file first and reports
// whether one was found.
func ResolvePath(flagPath string) (path string, dotenv bool) {
	// .env is optional, plain environment works too
	dotenv = godotenv.Load() == nil
	if flagPath != "" {
		return flagPath, dotenv
	}
	return getEnv("MEMGUARD_CONFIG", DefaultPath), dotenv
}

// Load reads, decodes, applies environment overrides to and validates the
// document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes data according to ext (".toml", ".yaml" or ".yml").
func Parse(data []byte, ext string) (*Config, error) {
	var doc document
	switch strings.ToLower(ext) {
	case ".toml", "":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode toml: %v", ErrInvalid, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalid, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, ext)
	}

	cfg, err := doc.build()
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (d *document) build() (*Config, error) {
	var missing []string
	need := func(ok bool, key string) {
		if !ok {
			missing = append(missing, key)
		}
	}

	need(d.Thresholds != nil, "thresholds")
	need(d.Whitelist != nil, "whitelist")
	need(d.Settings != nil, "settings")
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing section(s): %s", ErrInvalid, strings.Join(missing, ", "))
	}

	t, w, s := d.Thresholds, d.Whitelist, d.Settings
	need(t.RAMPercentThreshold != nil, "thresholds.ram_percent_threshold")
	need(t.RAMGBThreshold != nil, "thresholds.ram_gb_threshold")
	need(t.CheckInterval != nil, "thresholds.check_interval")
	need(w.PIDs != nil, "whitelist.pids")
	need(w.Names != nil, "whitelist.names")
	need(w.Users != nil, "whitelist.users")
	need(s.DryRun != nil, "settings.dry_run")
	need(s.LogFile != nil, "settings.log_file")
	need(s.EnableSyslog != nil, "settings.enable_syslog")
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing key(s): %s", ErrInvalid, strings.Join(missing, ", "))
	}

	cfg := &Config{
		RAMPercentThreshold: *t.RAMPercentThreshold,
		RAMGBThreshold:      *t.RAMGBThreshold,
		CheckInterval:       time.Duration(*t.CheckInterval * float64(time.Second)),
		WhitelistPIDs:       make(map[int32]struct{}, len(*w.PIDs)),
		WhitelistNames:      make([]string, 0, len(*w.Names)),
		WhitelistUsers:      make(map[string]struct{}, len(*w.Users)),
		DryRun:              *s.DryRun,
		LogFile:             *s.LogFile,
		EnableSyslog:        *s.EnableSyslog,
		LogLevel:            s.LogLevel,
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	for _, pid := range *w.PIDs {
		if pid <= 0 || pid > int64(^uint32(0)>>1) {
			return nil, fmt.Errorf("%w: whitelist pid %d out of range", ErrInvalid, pid)
		}
		cfg.WhitelistPIDs[int32(pid)] = struct{}{}
	}
	for _, name := range *w.Names {
		cfg.WhitelistNames = append(cfg.WhitelistNames, strings.ToLower(name))
	}
	for _, user := range *w.Users {
		cfg.WhitelistUsers[user] = struct{}{}
	}
	return cfg, nil
}

// applyEnv lets operators flip a few settings without editing the file.
func (c *Config) applyEnv() error {
	if v := os.Getenv("MEMGUARD_DRY_RUN"); v != "" {
		dryRun, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: MEMGUARD_DRY_RUN=%q: %v", ErrInvalid, v, err)
		}
		c.DryRun = dryRun
	}
	c.LogFile = getEnv("MEMGUARD_LOG_FILE", c.LogFile)
	c.LogLevel = getEnv("MEMGUARD_LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate checks ranges without modifying c. Load already calls it.
func (c *Config) Validate() error {
	switch {
	case c.RAMPercentThreshold <= 0 || c.RAMPercentThreshold > 100:
		return fmt.Errorf("%w: ram_percent_threshold must be in (0, 100], got %v", ErrInvalid, c.RAMPercentThreshold)
	case c.RAMGBThreshold <= 0:
		return fmt.Errorf("%w: ram_gb_threshold must be positive, got %v", ErrInvalid, c.RAMGBThreshold)
	case c.CheckInterval <= 0:
		return fmt.Errorf("%w: check_interval must be positive, got %v", ErrInvalid, c.CheckInterval)
	case c.LogFile == "":
		return fmt.Errorf("%w: log_file must not be empty", ErrInvalid)
	}
	for _, name := range c.WhitelistNames {
		if strings.TrimSpace(name) == "" {
			// an empty substring would protect every process
			return fmt.Errorf("%w: whitelist names must not be empty", ErrInvalid)
		}
	}
	return nil
}

// getEnv ambil env dengan fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
