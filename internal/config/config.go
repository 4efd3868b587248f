// Package config holds the settings for both redline pipelines. A Config is
// built once per invocation and passed down explicitly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/redline/core/docx"
	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/internal/extract"
	"github.com/FocuswithJustin/redline/internal/fuzzy"
	"github.com/FocuswithJustin/redline/internal/reformat"
	"github.com/FocuswithJustin/redline/internal/translate"
)

// DefaultAPIKeyEnv is the environment variable read for the Gemini key.
const DefaultAPIKeyEnv = "GEMINI_API_KEY"

// Config is the root configuration.
type Config struct {
	ContentPart string           `yaml:"content_part"`
	Annotate    AnnotateConfig   `yaml:"annotate"`
	Reformat    ReformatConfig   `yaml:"reformat"`
	Translator  TranslatorConfig `yaml:"translator"`
}

// AnnotateConfig configures the annotation pipeline.
type AnnotateConfig struct {
	Source      string `yaml:"source"` // Document carrying tracked changes
	Target      string `yaml:"target"` // Document to annotate
	Output      string `yaml:"output"`
	Threshold   int    `yaml:"threshold"`
	Scorer      string `yaml:"scorer"`
	ChangeOrder string `yaml:"change_order"` // "kind" or "position"
}

// ReformatConfig configures the reformat pipeline.
type ReformatConfig struct {
	Input             string `yaml:"input"`
	Output            string `yaml:"output"`
	TargetLocale      string `yaml:"target_locale"`
	RemovalColor      string `yaml:"removal_color"`
	NewParagraphColor string `yaml:"new_paragraph_color"`
	AppendText        string `yaml:"append_text"`
	Workers           int    `yaml:"workers"`
}

// TranslatorConfig selects the translation provider.
type TranslatorConfig struct {
	Provider  string        `yaml:"provider"` // "identity" or "gemini"
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
	Cache     bool          `yaml:"cache"`
	CacheSize int           `yaml:"cache_size"`
}

// Default returns a Config with every default filled in and no paths.
func Default() *Config {
	return &Config{
		ContentPart: docx.ContentPart,
		Annotate: AnnotateConfig{
			Threshold:   fuzzy.DefaultThreshold,
			Scorer:      "weighted",
			ChangeOrder: extract.OrderByKind.String(),
		},
		Reformat: ReformatConfig{
			TargetLocale:      "zh-TW",
			RemovalColor:      reformat.DefaultRemovalColor,
			NewParagraphColor: reformat.DefaultNewParagraphColor,
		},
		Translator: TranslatorConfig{
			Provider:  "identity",
			Model:     translate.DefaultGeminiModel,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   30 * time.Second,
			Cache:     true,
		},
	}
}

// Load reads a YAML file over the defaults. Fields missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewParse("YAML", path, err.Error(), err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{
		&c.Annotate.Source, &c.Annotate.Target, &c.Annotate.Output,
		&c.Reformat.Input, &c.Reformat.Output,
	} {
		expanded, err := expandUserPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

func expandUserPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewIO("resolve home directory for", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// Validate checks the settings shared by both pipelines.
func (c *Config) Validate() error {
	if c.ContentPart == "" {
		return errors.NewValidation("content_part", "must not be empty")
	}
	if c.Annotate.Threshold < 0 || c.Annotate.Threshold > 100 {
		return errors.NewValidation("annotate.threshold", fmt.Sprintf("must be between 0 and 100, got %d", c.Annotate.Threshold))
	}
	if _, err := fuzzy.ScorerByName(c.Annotate.Scorer); err != nil {
		return errors.NewValidation("annotate.scorer", err.Error())
	}
	if _, err := extract.ParseOrder(c.Annotate.ChangeOrder); err != nil {
		return errors.NewValidation("annotate.change_order", err.Error())
	}
	if !hexColor.MatchString(c.Reformat.RemovalColor) {
		return errors.NewValidation("reformat.removal_color", fmt.Sprintf("%q is not a 6-digit hex colour", c.Reformat.RemovalColor))
	}
	if !hexColor.MatchString(c.Reformat.NewParagraphColor) {
		return errors.NewValidation("reformat.new_paragraph_color", fmt.Sprintf("%q is not a 6-digit hex colour", c.Reformat.NewParagraphColor))
	}
	if c.Reformat.Workers < 0 {
		return errors.NewValidation("reformat.workers", "must not be negative")
	}
	switch strings.ToLower(c.Translator.Provider) {
	case "", "identity", "gemini":
	default:
		return errors.NewValidation("translator.provider", fmt.Sprintf("unknown provider %q", c.Translator.Provider))
	}
	if c.Translator.CacheSize < 0 {
		return errors.NewValidation("translator.cache_size", "must not be negative")
	}
	if c.Translator.Timeout < 0 {
		return errors.NewValidation("translator.timeout", "must not be negative")
	}
	return nil
}

// ValidateAnnotate checks everything the annotation pipeline needs.
func (c *Config) ValidateAnnotate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, p := range []struct{ field, value string }{
		{"annotate.source", c.Annotate.Source},
		{"annotate.target", c.Annotate.Target},
		{"annotate.output", c.Annotate.Output},
	} {
		if p.value == "" {
			return errors.NewValidation(p.field, "path is required")
		}
	}
	return nil
}

// ValidateReformat checks everything the reformat pipeline needs.
func (c *Config) ValidateReformat() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Reformat.Input == "" {
		return errors.NewValidation("reformat.input", "path is required")
	}
	if c.Reformat.Output == "" {
		return errors.NewValidation("reformat.output", "path is required")
	}
	if c.Reformat.TargetLocale == "" {
		return errors.NewValidation("reformat.target_locale", "must not be empty")
	}
	return nil
}

// Matcher returns the fuzzy matcher described by the annotate settings.
func (c *Config) Matcher() (fuzzy.Matcher, error) {
	scorer, err := fuzzy.ScorerByName(c.Annotate.Scorer)
	if err != nil {
		return fuzzy.Matcher{}, errors.NewValidation("annotate.scorer", err.Error())
	}
	return fuzzy.Matcher{Scorer: scorer, Threshold: c.Annotate.Threshold}, nil
}

// Order returns the configured change ordering.
func (c *Config) Order() extract.Order {
	order, _ := extract.ParseOrder(c.Annotate.ChangeOrder)
	return order
}

// ReformatOptions returns the options for reformat.Run.
func (c *Config) ReformatOptions() reformat.Options {
	return reformat.Options{
		TargetLocale:      c.Reformat.TargetLocale,
		RemovalColor:      c.Reformat.RemovalColor,
		NewParagraphColor: c.Reformat.NewParagraphColor,
		AppendText:        c.Reformat.AppendText,
		Workers:           c.Reformat.Workers,
	}
}

// TranslatorSettings resolves the translator settings, reading the API key
// from the configured environment variable.
func (c *Config) TranslatorSettings() translate.Settings {
	env := c.Translator.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	return translate.Settings{
		Provider:  c.Translator.Provider,
		Model:     c.Translator.Model,
		APIKey:    os.Getenv(env),
		Timeout:   c.Translator.Timeout,
		Cache:     c.Translator.Cache,
		CacheSize: c.Translator.CacheSize,
	}
}
