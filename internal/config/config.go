package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/dgallion1/docslice/internal/section"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "config.yaml"

type Config struct {
	Paths      Paths      `yaml:"paths"`
	Chapter    Chapter    `yaml:"chapter_settings"`
	Processing Processing `yaml:"processing"`
}

// Paths are the batch folders. Relative paths resolve against the config
// file's directory.
type Paths struct {
	InputFolder     string `yaml:"input_folder"`
	OutputFolder    string `yaml:"output_folder"`
	UnsupportFolder string `yaml:"unsupport_folder"`
	OldFolder       string `yaml:"old_folder"`
	TempFolder      string `yaml:"temp_folder"`
}

// Chapter describes the section query.
type Chapter struct {
	Section1       string `yaml:"section1"` // Comma-separated start keywords
	Section2       string `yaml:"section2"` // Comma-separated end keywords
	Section1Offset int    `yaml:"section1_offset"`
	Section2Offset int    `yaml:"section2_offset"`
	Section1Level  int    `yaml:"section1_level"`
	Section2Level  int    `yaml:"section2_level"`

	HeadingStyles string `yaml:"heading_styles"` // Comma-separated style prefixes
	Match         string `yaml:"match"`          // contains, exact or prefix
}

type Processing struct {
	WaitTime   float64 `yaml:"wait_time"` // Seconds
	Verbose    bool    `yaml:"verbose"`
	Journal    string  `yaml:"journal"`
	StatusAddr string  `yaml:"status_addr"`
}

// Defaults returns the configuration used for keys absent from the file.
func Defaults() Config {
	return Config{
		Paths: Paths{
			InputFolder:     "input_file",
			OutputFolder:    "output_file",
			UnsupportFolder: "unsupport_file",
			OldFolder:       "old_file",
			TempFolder:      "temp_file",
		},
		Chapter: Chapter{
			Section1:       "总论",
			Section2:       "建设方案",
			Section1Offset: 1,
			Section2Offset: 1,
			Section1Level:  1,
			Section2Level:  1,
			HeadingStyles:  strings.Join(doctree.DefaultHeadingStyles, ","),
			Match:          "contains",
		},
		Processing: Processing{
			WaitTime: 1,
			Verbose:  true,
		},
	}
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result. A .env file in the working directory is loaded
// first; variables already set take precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()

	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	cfg.resolvePaths(baseDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Paths.InputFolder = envOr("DOCSLICE_INPUT_FOLDER", c.Paths.InputFolder)
	c.Paths.OutputFolder = envOr("DOCSLICE_OUTPUT_FOLDER", c.Paths.OutputFolder)
	c.Paths.UnsupportFolder = envOr("DOCSLICE_UNSUPPORT_FOLDER", c.Paths.UnsupportFolder)
	c.Paths.OldFolder = envOr("DOCSLICE_OLD_FOLDER", c.Paths.OldFolder)
	c.Paths.TempFolder = envOr("DOCSLICE_TEMP_FOLDER", c.Paths.TempFolder)
	c.Processing.WaitTime = envFloat("DOCSLICE_WAIT_TIME", c.Processing.WaitTime)
	c.Processing.Verbose = envBool("DOCSLICE_VERBOSE", c.Processing.Verbose)
	c.Processing.Journal = envOr("DOCSLICE_JOURNAL", c.Processing.Journal)
	c.Processing.StatusAddr = envOr("DOCSLICE_STATUS_ADDR", c.Processing.StatusAddr)
}

func (c *Config) resolvePaths(baseDir string) {
	for _, p := range []*string{
		&c.Paths.InputFolder,
		&c.Paths.OutputFolder,
		&c.Paths.UnsupportFolder,
		&c.Paths.OldFolder,
		&c.Paths.TempFolder,
	} {
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
	if c.Processing.Journal != "" && !filepath.IsAbs(c.Processing.Journal) {
		c.Processing.Journal = filepath.Join(baseDir, c.Processing.Journal)
	}
}

func (c Config) Validate() error {
	if len(SplitList(c.Chapter.Section1)) == 0 {
		return fmt.Errorf("chapter_settings.section1 is required")
	}
	if len(SplitList(c.Chapter.Section2)) == 0 {
		return fmt.Errorf("chapter_settings.section2 is required")
	}
	for name, lvl := range map[string]int{
		"section1_level": c.Chapter.Section1Level,
		"section2_level": c.Chapter.Section2Level,
	} {
		if lvl < 1 || lvl > 9 {
			return fmt.Errorf("chapter_settings.%s must be between 1 and 9, got %d", name, lvl)
		}
	}
	if _, err := section.FactoryByName(c.Chapter.Match); err != nil {
		return fmt.Errorf("chapter_settings.match: %w", err)
	}
	if c.Processing.WaitTime < 0 {
		return fmt.Errorf("processing.wait_time must not be negative")
	}
	return nil
}

// Query builds the section query described by the chapter settings.
func (c Config) Query() section.Query {
	// Validate has already rejected unknown strategies.
	factory, _ := section.FactoryByName(c.Chapter.Match)
	return section.Query{
		Start: section.Side{
			Keywords: SplitList(c.Chapter.Section1),
			Level:    c.Chapter.Section1Level,
			Offset:   c.Chapter.Section1Offset,
		},
		End: section.Side{
			Keywords: SplitList(c.Chapter.Section2),
			Level:    c.Chapter.Section2Level,
			Offset:   c.Chapter.Section2Offset,
		},
		NewMatcher: factory,
	}
}

// HeadingStyles returns the recognized heading style prefixes.
func (c Config) HeadingStyles() doctree.StyleSet {
	return doctree.NewStyleSet(SplitList(c.Chapter.HeadingStyles)...)
}

// SettleDelay is the wait between closing a document and moving files.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Processing.WaitTime * float64(time.Second))
}

// SplitList splits a comma-separated list (ASCII or full-width commas),
// trimming blanks and dropping empty entries.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '，' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
