package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/shinji-kodama/sqlfluff-check/internal/model"
)

// DefaultFileName is the configuration file looked up in the working
// directory when no explicit path is given.
const DefaultFileName = ".sqlfluff"

const (
	// iniSection is the sqlfluff core section in .sqlfluff files.
	iniSection = "sqlfluff"

	// limitKey is the same in both formats.
	limitKey = "large_file_skip_byte_limit"
)

// tomlCorePath is where sqlfluff reads its core settings from pyproject.toml.
var tomlCorePath = []string{"tool", "sqlfluff", "core"}

// errKeyNotSet marks a configuration that parsed fine but does not set
// the limit. It is handled exactly like any other fallback case.
var errKeyNotSet = errors.New("large_file_skip_byte_limit not set")

// integerPattern is a decimal integer with optional sign and single
// underscores between digits, e.g. "50_000".
var integerPattern = regexp.MustCompile(`^[+-]?[0-9]+(_[0-9]+)*$`)

// Exists reports whether the configuration path is present. Its presence
// is the caller's opt-in to being checked at all. A directory counts as
// present; reading it later yields the default limit.
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// ResolveLargeFileLimit returns the byte limit above which a file is
// rejected. A non-positive result disables the limit.
//
// Every failure falls back to model.DefaultLargeFileLimit; the reason is
// logged at debug level and never returned to the caller.
func ResolveLargeFileLimit(fs afero.Fs, path string, logger *zap.Logger) int64 {
	if logger == nil {
		logger = zap.NewNop()
	}

	limit, err := loadLimit(fs, path)
	if err != nil {
		logger.Debug("Using default large file limit",
			zap.String("config", path),
			zap.Int64("limit", model.DefaultLargeFileLimit),
			zap.Error(err))
		return model.DefaultLargeFileLimit
	}

	logger.Debug("Resolved large file limit from config",
		zap.String("config", path),
		zap.Int64("limit", limit))
	return limit
}

// loadLimit reads the file and dispatches on its extension.
func loadLimit(fs afero.Fs, path string) (int64, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return parseTOMLLimit(data)
	}
	return parseINILimit(data)
}

// parseINILimit extracts the limit from .sqlfluff content.
//
// Keys are case-insensitive and inline ";" or "#" are kept as part of the
// value, so "20000 ; comment" is not an integer and falls back. A key set
// in [DEFAULT] is inherited, but only when [sqlfluff] itself exists.
func parseINILimit(data []byte) (int64, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:     true,
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return 0, fmt.Errorf("parse ini: %w", err)
	}

	section, err := cfg.GetSection(iniSection)
	if err != nil {
		return 0, fmt.Errorf("section [%s]: %w", iniSection, err)
	}
	if !section.HasKey(limitKey) {
		section = cfg.Section(ini.DefaultSection)
		if !section.HasKey(limitKey) {
			return 0, errKeyNotSet
		}
	}

	return parseLimitValue(section.Key(limitKey).String())
}

// parseTOMLLimit extracts the limit from pyproject.toml content.
func parseTOMLLimit(data []byte) (int64, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse toml: %w", err)
	}

	table := doc
	for _, name := range tomlCorePath {
		next, ok := table[name].(map[string]interface{})
		if !ok {
			return 0, fmt.Errorf("table [%s]: %w", strings.Join(tomlCorePath, "."), errKeyNotSet)
		}
		table = next
	}

	raw, ok := table[limitKey]
	if !ok {
		return 0, errKeyNotSet
	}

	// go-toml decodes integers as int64. Quoted numbers are accepted too,
	// since sqlfluff itself coerces string values.
	switch v := raw.(type) {
	case int64:
		return v, nil
	case string:
		return parseLimitValue(v)
	default:
		return 0, fmt.Errorf("%s: unsupported value type %T", limitKey, raw)
	}
}

// parseLimitValue converts a configured value to a byte limit. Leading
// zeros and digit-group underscores are accepted; other bases are not.
func parseLimitValue(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !integerPattern.MatchString(s) {
		return 0, fmt.Errorf("%s: invalid integer %q", limitKey, s)
	}

	limit, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", limitKey, err)
	}
	return limit, nil
}
