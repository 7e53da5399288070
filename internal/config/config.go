// Package config loads awaitlint.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"awaitlint/internal/diagfmt"
	"awaitlint/internal/lint"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "awaitlint.toml"

// Output holds the [output] section. Empty fields mean "not set".
type Output struct {
	Format   string `toml:"format"`
	Theme    string `toml:"theme"`
	PathMode string `toml:"path_mode"`
}

// Config is a validated awaitlint.toml.
type Config struct {
	Path   string // пусто, если файл не найден
	Output Output
	Levels map[string]lint.Level
}

// Formats lists the accepted values of [output].format and --format.
var Formats = []string{"pretty", "short", "json", "sarif", "msgpack"}

var (
	// ErrUnknownKey reports keys the loader does not understand.
	ErrUnknownKey = errors.New("unknown key")
	// ErrUnknownRule reports a [rules] entry that names no known rule.
	ErrUnknownRule = errors.New("unknown rule")
)

type fileConfig struct {
	Output Output         `toml:"output"`
	Rules  map[string]any `toml:"rules"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{Levels: map[string]lint.Level{}}
}

// Find walks up from startDir to locate awaitlint.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the first awaitlint.toml above startDir, or Default when
// there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load parses and validates the file at path.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}

	cfg := Default()
	cfg.Path = path
	if meta.IsDefined("output") {
		out, err := validateOutput(raw.Output)
		if err != nil {
			return Config{}, fmt.Errorf("%s: [output]: %w", path, err)
		}
		cfg.Output = out
	}
	if meta.IsDefined("rules") {
		levels, err := parseRules(raw.Rules)
		if err != nil {
			return Config{}, fmt.Errorf("%s: [rules]: %w", path, err)
		}
		cfg.Levels = levels
	}
	return cfg, nil
}

func validateOutput(out Output) (Output, error) {
	out.Format = strings.ToLower(strings.TrimSpace(out.Format))
	if out.Format != "" {
		if err := CheckFormat(out.Format); err != nil {
			return Output{}, err
		}
	}
	out.Theme = strings.TrimSpace(out.Theme)
	if out.Theme != "" {
		if _, err := diagfmt.ParseTheme(out.Theme); err != nil {
			return Output{}, err
		}
	}
	out.PathMode = strings.TrimSpace(out.PathMode)
	if out.PathMode != "" {
		if _, err := diagfmt.ParsePathMode(out.PathMode); err != nil {
			return Output{}, err
		}
	}
	return out, nil
}

// CheckFormat validates an output format name.
func CheckFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q (expected: %s)", format, strings.Join(Formats, "|"))
}

// parseRules accepts string levels and the numeric 0/1/2 form.
func parseRules(rules map[string]any) (map[string]lint.Level, error) {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	levels := make(map[string]lint.Level, len(rules))
	for _, name := range names {
		if _, ok := lint.Lookup(name); !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownRule, name)
		}
		var text string
		switch v := rules[name].(type) {
		case string:
			text = v
		case int64:
			text = fmt.Sprint(v)
		default:
			return nil, fmt.Errorf("rule %q: level must be a string or 0|1|2, got %T", name, v)
		}
		level, err := lint.ParseLevel(text)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
		levels[name] = level
	}
	return levels, nil
}
