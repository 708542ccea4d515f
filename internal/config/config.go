package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Local"
	configPathEnv   = "NEWSDIGEST_CONFIG"
	databasePathEnv = "DATABASE_PATH"
	geminiAPIKeyEnv = "GEMINI_API_KEY"
	geminiModelEnv  = "GEMINI_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Selection SelectionConfig `yaml:"selection"`
	Summary   SummaryConfig   `yaml:"summary"`
	Retention RetentionConfig `yaml:"retention"`
	Export    ExportConfig    `yaml:"export"`
	Sites     []SiteConfig    `yaml:"sites"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the SQLite archive file.
type DatabaseConfig struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table"`
}

// SchedulerConfig defines when the pipeline should run. An empty cron
// expression means a single immediate run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.Local
}

// GeminiConfig defines how to contact the scoring/summarization model.
type GeminiConfig struct {
	APIKey                string `yaml:"apiKey"`
	Model                 string `yaml:"model"`
	RequestTimeoutSeconds int    `yaml:"requestTimeoutSeconds"`
}

// RequestTimeout bounds a single model call.
func (g GeminiConfig) RequestTimeout() time.Duration {
	return time.Duration(g.RequestTimeoutSeconds) * time.Second
}

// IngestConfig tunes the source fan-out.
type IngestConfig struct {
	Workers            int `yaml:"workers"`
	SiteTimeoutSeconds int `yaml:"siteTimeoutSeconds"`
}

// SiteTimeout bounds a single source adapter run.
func (i IngestConfig) SiteTimeout() time.Duration {
	return time.Duration(i.SiteTimeoutSeconds) * time.Second
}

// SelectionConfig carries quota and override settings for the final list.
type SelectionConfig struct {
	TotalLimit     int             `yaml:"totalLimit"`
	CategoryQuotas map[string]int  `yaml:"categoryQuotas"`
	ForceKeepRules []ForceKeepRule `yaml:"forceKeepRules"`
}

// ForceKeepRule unconditionally includes matching articles in the final list.
// Type is one of keyword, source, category, composite.
type ForceKeepRule struct {
	Type       string         `yaml:"type"`
	Values     []string       `yaml:"values"`
	Conditions RuleConditions `yaml:"conditions"`
}

// RuleConditions are ANDed together for composite rules; empty fields are
// skipped.
type RuleConditions struct {
	Source   string `yaml:"source"`
	Category string `yaml:"category"`
	Keyword  string `yaml:"keyword"`
}

// SummaryConfig tunes the summarization stage.
type SummaryConfig struct {
	MinLength      int `yaml:"minLength"`
	TruncateLength int `yaml:"truncateLength"`
	DelayMillis    int `yaml:"delayMillis"`
}

// Delay is the pause between consecutive summarization calls.
func (s SummaryConfig) Delay() time.Duration {
	return time.Duration(s.DelayMillis) * time.Millisecond
}

// RetentionConfig controls archive pruning.
type RetentionConfig struct {
	Enabled bool `yaml:"enabled"`
	Days    int  `yaml:"days"`
}

// ExportConfig points at the directory receiving tables and digests.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// SiteConfig describes a single source with its adapter variant.
type SiteConfig struct {
	Name    string            `yaml:"name"`
	Adapter string            `yaml:"adapter"`
	URL     string            `yaml:"url"`
	Options map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. A .env file in the working directory is honored first.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc = time.Local
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}
	if override.Database.Table != "" {
		base.Database.Table = override.Database.Table
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.RequestTimeoutSeconds > 0 {
		base.Gemini.RequestTimeoutSeconds = override.Gemini.RequestTimeoutSeconds
	}

	if override.Ingest.Workers > 0 {
		base.Ingest.Workers = override.Ingest.Workers
	}
	if override.Ingest.SiteTimeoutSeconds > 0 {
		base.Ingest.SiteTimeoutSeconds = override.Ingest.SiteTimeoutSeconds
	}

	if override.Selection.TotalLimit > 0 {
		base.Selection.TotalLimit = override.Selection.TotalLimit
	}
	if len(override.Selection.CategoryQuotas) > 0 {
		base.Selection.CategoryQuotas = override.Selection.CategoryQuotas
	}
	if len(override.Selection.ForceKeepRules) > 0 {
		base.Selection.ForceKeepRules = override.Selection.ForceKeepRules
	}

	if override.Summary.MinLength > 0 {
		base.Summary.MinLength = override.Summary.MinLength
	}
	if override.Summary.TruncateLength > 0 {
		base.Summary.TruncateLength = override.Summary.TruncateLength
	}
	if override.Summary.DelayMillis > 0 {
		base.Summary.DelayMillis = override.Summary.DelayMillis
	}

	base.Retention = override.Retention

	if override.Export.Dir != "" {
		base.Export = override.Export
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Path: "news_archive.db", Table: "articles"},
		Gemini: GeminiConfig{
			Model:                 "gemini-2.5-flash",
			RequestTimeoutSeconds: 60,
		},
		Ingest: IngestConfig{
			Workers:            5,
			SiteTimeoutSeconds: 20,
		},
		Selection: SelectionConfig{TotalLimit: 20},
		Summary: SummaryConfig{
			MinLength:      50,
			TruncateLength: 200,
			DelayMillis:    500,
		},
		Retention: RetentionConfig{Enabled: false, Days: 7},
		Export:    ExportConfig{Dir: "."},
	}
}
