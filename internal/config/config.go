package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type Config struct {
	FilePath  string
	UseStdin  bool
	Follow    bool
	Demo      bool
	Delimiter string // explicit delimiter override; empty = infer
	Tail      bool   // start with tail mode enabled
	Theme     Theme

	Offline          bool
	NoCache          bool
	OpenAIModel      string
	OpenAIBase       string
	OpenAITimeoutSec int

	ExportFormat string
	ExportOut    string

	MaxLineBytes int

	ShowVersion bool

	// Internal
	IsPipedStdin bool
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Detect if stdin is piped
	fi, _ := os.Stdin.Stat()
	cfg.IsPipedStdin = (fi.Mode() & os.ModeCharDevice) == 0

	fs := flag.NewFlagSet("nless", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.FilePath, "file", "", "path to input file")
	fs.BoolVar(&cfg.Follow, "follow", false, "follow file (tail -f)")
	fs.BoolVar(&cfg.UseStdin, "stdin", false, "read from stdin (default: auto if piped)")
	fs.BoolVar(&cfg.Demo, "demo", false, "generate demo data instead of reading input")
	fs.StringVar(&cfg.Delimiter, "delimiter", "", `delimiter override: ',' '\t' '|' ';' ' ' 'raw' or a regex with named groups (default: infer)`)
	fs.BoolVar(&cfg.Tail, "tail", false, "start with tail mode on (keep cursor on the newest row)")
	theme := string(ThemeDark)
	fs.StringVar(&theme, "theme", string(ThemeDark), "theme: dark|light")
	fs.BoolVar(&cfg.Offline, "offline", false, "disable OpenAI delimiter assist and work offline only")
	fs.BoolVar(&cfg.NoCache, "no-cache", false, "disable delimiter cache (skip read/write)")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", getenvDefault("NLESS_OPENAI_MODEL", "gpt-5-mini"), "OpenAI model override")
	fs.StringVar(&cfg.OpenAIBase, "openai-base-url", getenvDefault("NLESS_OPENAI_BASE_URL", ""), "OpenAI base URL override")
	fs.IntVar(&cfg.OpenAITimeoutSec, "openai-timeout-sec", getenvDefaultInt("NLESS_OPENAI_TIMEOUT_SEC", 60), "OpenAI request timeout in seconds")
	fs.StringVar(&cfg.ExportFormat, "export", "", "default export format for the 'e' key: csv|json")
	fs.StringVar(&cfg.ExportOut, "out", "", "output path for export")
	fs.IntVar(&cfg.MaxLineBytes, "max-line-bytes", 1024*1024, "per-line read buffer limit in bytes")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, err
	}
	cfg.Theme = Theme(theme)

	if cfg.ExportFormat != "" && cfg.ExportFormat != "csv" && cfg.ExportFormat != "json" {
		return nil, errors.New("--export must be csv or json")
	}

	// Determine input source defaults
	if cfg.UseStdin || (cfg.IsPipedStdin && cfg.FilePath == "") {
		cfg.UseStdin = true
	}
	if !cfg.UseStdin && cfg.FilePath == "" {
		cfg.Demo = true
	}

	if cfg.MaxLineBytes < 64*1024 {
		cfg.MaxLineBytes = 64 * 1024
	}

	return cfg, nil
}

func getenvDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvDefaultInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func (c *Config) OpenAIKey() string { return os.Getenv("OPENAI_API_KEY") }

func (c *Config) String() string {
	return fmt.Sprintf("file=%s stdin=%v follow=%v demo=%v delimiter=%q tail=%v", c.FilePath, c.UseStdin, c.Follow, c.Demo, c.Delimiter, c.Tail)
}
