package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultMonthNames are the Afrikaans month names used on the printed schedule
var DefaultMonthNames = [12]string{
	"Januarie", "Februarie", "Maart", "April", "Mei", "Junie",
	"Julie", "Augustus", "September", "Oktober", "November", "Desember",
}

// Config is passed explicitly to the calendar, the scheduler and the exporter
type Config struct {
	ShiftSize           int
	ContextSize         int
	Months              int
	Strategy            models.Strategy
	IncludeCurrentMonth bool
	Weekday             time.Weekday
	Delimiter           string
	RosterPath          string
	ContextPath         string
	OutputDir           string
	OutputPrefix        string
	MonthNames          [12]string
	// Seed fixes the shuffle source; 0 seeds from the clock
	Seed int64
}

// Default returns the configuration the tool ships with
func Default() Config {
	return Config{
		ShiftSize:    4,
		ContextSize:  8,
		Months:       4,
		Strategy:     models.StrategyRandom,
		Weekday:      time.Sunday,
		Delimiter:    ",",
		RosterPath:   "diakens.txt",
		ContextPath:  "konteks.txt",
		OutputDir:    "data",
		OutputPrefix: "diaken_diensbeurte",
		MonthNames:   DefaultMonthNames,
	}
}

// fileConfig mirrors Config for YAML; nil fields keep the current value
type fileConfig struct {
	ShiftSize           *int     `yaml:"shift_size"`
	ContextSize         *int     `yaml:"context_size"`
	Months              *int     `yaml:"months"`
	Strategy            *string  `yaml:"strategy"`
	IncludeCurrentMonth *bool    `yaml:"include_current_month"`
	Weekday             *string  `yaml:"weekday"`
	Delimiter           *string  `yaml:"delimiter"`
	RosterPath          *string  `yaml:"roster_file"`
	ContextPath         *string  `yaml:"context_file"`
	OutputDir           *string  `yaml:"output_dir"`
	OutputPrefix        *string  `yaml:"output_prefix"`
	MonthNames          []string `yaml:"month_names"`
	Seed                *int64   `yaml:"seed"`
}

// Load builds a Config from defaults, the optional YAML file at path and
// ROTATION_* environment variables, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := cfg.ApplyYAML(data); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyYAML overrides the fields present in data
func (c *Config) ApplyYAML(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	setInt(&c.ShiftSize, fc.ShiftSize)
	setInt(&c.ContextSize, fc.ContextSize)
	setInt(&c.Months, fc.Months)
	setString(&c.Delimiter, fc.Delimiter)
	setString(&c.RosterPath, fc.RosterPath)
	setString(&c.ContextPath, fc.ContextPath)
	setString(&c.OutputDir, fc.OutputDir)
	setString(&c.OutputPrefix, fc.OutputPrefix)
	if fc.IncludeCurrentMonth != nil {
		c.IncludeCurrentMonth = *fc.IncludeCurrentMonth
	}
	if fc.Seed != nil {
		c.Seed = *fc.Seed
	}
	if fc.Strategy != nil {
		s, err := models.ParseStrategy(*fc.Strategy)
		if err != nil {
			return err
		}
		c.Strategy = s
	}
	if fc.Weekday != nil {
		wd, err := ParseWeekday(*fc.Weekday)
		if err != nil {
			return err
		}
		c.Weekday = wd
	}
	if len(fc.MonthNames) > 0 {
		if len(fc.MonthNames) != 12 {
			return fmt.Errorf("month_names needs 12 entries, got %d", len(fc.MonthNames))
		}
		copy(c.MonthNames[:], fc.MonthNames)
	}
	return nil
}

// ApplyEnv overrides fields from ROTATION_* variables looked up with getenv
func (c *Config) ApplyEnv(getenv func(string) string) error {
	ints := map[string]*int{
		"ROTATION_SHIFT_SIZE":   &c.ShiftSize,
		"ROTATION_CONTEXT_SIZE": &c.ContextSize,
		"ROTATION_MONTHS":       &c.Months,
	}
	for key, dst := range ints {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, v)
			}
			*dst = n
		}
	}

	strs := map[string]*string{
		"ROTATION_ROSTER_FILE":   &c.RosterPath,
		"ROTATION_CONTEXT_FILE":  &c.ContextPath,
		"ROTATION_OUTPUT_DIR":    &c.OutputDir,
		"ROTATION_OUTPUT_PREFIX": &c.OutputPrefix,
		"ROTATION_DELIMITER":     &c.Delimiter,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if v := getenv("ROTATION_STRATEGY"); v != "" {
		s, err := models.ParseStrategy(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.Strategy = s
	}
	if v := getenv("ROTATION_INCLUDE_CURRENT_MONTH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: ROTATION_INCLUDE_CURRENT_MONTH=%q", ErrInvalidConfig, v)
		}
		c.IncludeCurrentMonth = b
	}
	if v := getenv("ROTATION_WEEKDAY"); v != "" {
		wd, err := ParseWeekday(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.Weekday = wd
	}
	if v := getenv("ROTATION_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ROTATION_SEED=%q", ErrInvalidConfig, v)
		}
		c.Seed = n
	}
	return nil
}

// Validate rejects values the scheduler and calendar cannot work with
func (c Config) Validate() error {
	switch {
	case c.ShiftSize < 1:
		return fmt.Errorf("%w: shift size must be at least 1, got %d", ErrInvalidConfig, c.ShiftSize)
	case c.ContextSize < 0:
		return fmt.Errorf("%w: context size must not be negative, got %d", ErrInvalidConfig, c.ContextSize)
	case c.Months < 1:
		return fmt.Errorf("%w: months must be at least 1, got %d", ErrInvalidConfig, c.Months)
	case !c.Strategy.Valid():
		return fmt.Errorf("%w: unknown strategy %d", ErrInvalidConfig, int(c.Strategy))
	case c.Delimiter == "":
		return fmt.Errorf("%w: delimiter must not be empty", ErrInvalidConfig)
	}
	return nil
}

// ParseWeekday accepts an English weekday name or its first three letters
func ParseWeekday(v string) (time.Weekday, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || v == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", v)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
