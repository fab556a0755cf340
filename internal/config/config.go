package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTargetYear = 2026
	DefaultInputPath  = "master_meetups.json"
	DefaultOutErrors  = "meetups_rss_errors.json"
)

type Config struct {
	TargetYear int
	InputPath  string

	OutputDir  string
	OutWith    string
	OutWithout string
	OutErrors  string

	HTTPTimeout time.Duration
	UserAgent   string

	SleepMin    time.Duration
	SleepMax    time.Duration
	SleepOnSkip bool

	MetricsTextfile string
}

// fileConfig mirrors Config for the optional YAML file.
type fileConfig struct {
	TargetYear      int            `yaml:"target_year"`
	InputPath       string         `yaml:"input_path"`
	OutputDir       string         `yaml:"output_dir"`
	OutWith         string         `yaml:"out_with"`
	OutWithout      string         `yaml:"out_without"`
	OutErrors       string         `yaml:"out_errors"`
	HTTPTimeout     time.Duration  `yaml:"http_timeout"`
	UserAgent       string         `yaml:"user_agent"` // empty keeps the fetcher default
	SleepMin        *time.Duration `yaml:"sleep_min"`
	SleepMax        time.Duration  `yaml:"sleep_max"`
	SleepOnSkip     bool           `yaml:"sleep_on_skip"`
	MetricsTextfile string         `yaml:"metrics_textfile"`
}

// Load resolves configuration once at startup: defaults, then the YAML file
// named by MEETUPSPLIT_CONFIG, then the environment (a .env file in the
// working directory is loaded first and never overrides real variables).
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		TargetYear:  DefaultTargetYear,
		InputPath:   DefaultInputPath,
		OutputDir:   ".",
		HTTPTimeout: 30 * time.Second,
		SleepMin:    10 * time.Second,
		SleepMax:    60 * time.Second,
	}

	if path := os.Getenv("MEETUPSPLIT_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if cfg.OutWith == "" {
		cfg.OutWith = fmt.Sprintf("meetups_with_pubdate_%d.json", cfg.TargetYear)
	}
	if cfg.OutWithout == "" {
		cfg.OutWithout = fmt.Sprintf("meetups_without_pubdate_%d.json", cfg.TargetYear)
	}
	if cfg.OutErrors == "" {
		cfg.OutErrors = DefaultOutErrors
	}
	cfg.OutWith = cfg.outputPath(cfg.OutWith)
	cfg.OutWithout = cfg.outputPath(cfg.OutWithout)
	cfg.OutErrors = cfg.outputPath(cfg.OutErrors)

	return cfg, cfg.validate()
}

func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if f.TargetYear != 0 {
		c.TargetYear = f.TargetYear
	}
	setString(&c.InputPath, f.InputPath)
	setString(&c.OutputDir, f.OutputDir)
	setString(&c.OutWith, f.OutWith)
	setString(&c.OutWithout, f.OutWithout)
	setString(&c.OutErrors, f.OutErrors)
	setString(&c.UserAgent, f.UserAgent)
	setString(&c.MetricsTextfile, f.MetricsTextfile)
	if f.HTTPTimeout != 0 {
		c.HTTPTimeout = f.HTTPTimeout
	}
	// zero is a meaningful minimum, so only an absent key keeps the default
	if f.SleepMin != nil {
		c.SleepMin = *f.SleepMin
	}
	if f.SleepMax != 0 {
		c.SleepMax = f.SleepMax
	}
	c.SleepOnSkip = c.SleepOnSkip || f.SleepOnSkip
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TARGET_YEAR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TARGET_YEAR: %w", err)
		}
		c.TargetYear = n
	}
	setString(&c.InputPath, os.Getenv("MEETUPS_FILE"))
	setString(&c.OutputDir, os.Getenv("OUTPUT_DIR"))
	setString(&c.OutWith, os.Getenv("OUT_WITH"))
	setString(&c.OutWithout, os.Getenv("OUT_WITHOUT"))
	setString(&c.OutErrors, os.Getenv("OUT_ERRORS"))
	setString(&c.UserAgent, os.Getenv("HTTP_USER_AGENT"))
	setString(&c.MetricsTextfile, os.Getenv("METRICS_TEXTFILE"))

	var err error
	if c.HTTPTimeout, err = parseDurationEnv("HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	if c.SleepMin, err = parseDurationEnv("SLEEP_MIN", c.SleepMin); err != nil {
		return err
	}
	if c.SleepMax, err = parseDurationEnv("SLEEP_MAX", c.SleepMax); err != nil {
		return err
	}
	if v := os.Getenv("SLEEP_ON_SKIP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SLEEP_ON_SKIP: %w", err)
		}
		c.SleepOnSkip = b
	}
	return nil
}

func (c Config) validate() error {
	if c.TargetYear < 1 || c.TargetYear > 9999 {
		return fmt.Errorf("target year %d out of range", c.TargetYear)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("http timeout must be > 0")
	}
	if c.SleepMin < 0 || c.SleepMax < c.SleepMin {
		return fmt.Errorf("invalid sleep range %s..%s", c.SleepMin, c.SleepMax)
	}
	return nil
}

func (c Config) outputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseDurationEnv accepts Go durations ("45s") and bare seconds ("45").
func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
