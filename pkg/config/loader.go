package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Common errors for setup file loading.
var (
	ErrFileNotFound     = errors.New("setup file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("setup file is empty")
	ErrNoFiles          = errors.New("no setup files found")
	ErrConflict         = errors.New("conflicting setup files")
)

// setupFileExtensions are the extensions picked up when a directory is given.
var setupFileExtensions = []string{".yaml", ".yml", ".json"}

// LoadFromFile reads a File from a JSON or YAML file.
// The format is auto-detected based on file extension (.yaml, .yml for YAML, otherwise JSON).
func LoadFromFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	data = []byte(ExpandEnvVars(string(data)))

	var file *File
	if isYAML(path) {
		file, err = ParseYAML(data)
	} else {
		file, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	file.sources = []string{path}
	return file, nil
}

// ParseJSON parses a File from JSON data.
func ParseJSON(data []byte) (*File, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding setup file: %w", err)
	}
	return &file, nil
}

// ParseYAML parses a File from YAML data.
func ParseYAML(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}
	return &file, nil
}

// Load expands every argument with ExpandPaths, loads the resulting files in
// order and merges them. Setups are concatenated; prefix, strict and
// basePort come from the first file that sets them, and a later file setting
// a different prefix or basePort is an ErrConflict.
func Load(args ...string) (*File, error) {
	paths, err := ExpandPaths(args...)
	if err != nil {
		return nil, err
	}

	merged := &File{}
	for _, path := range paths {
		f, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		if err := merged.merge(f); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConflict, path, err)
		}
	}
	return merged, nil
}

func (f *File) merge(other *File) error {
	if other.Prefix != "" {
		if f.Prefix != "" && f.Prefix != other.Prefix {
			return fmt.Errorf("prefix %q differs from %q", other.Prefix, f.Prefix)
		}
		f.Prefix = other.Prefix
	}
	if other.BasePort != 0 {
		if f.BasePort != 0 && f.BasePort != other.BasePort {
			return fmt.Errorf("basePort %d differs from %d", other.BasePort, f.BasePort)
		}
		f.BasePort = other.BasePort
	}
	f.Strict = f.Strict || other.Strict
	f.Setups = append(f.Setups, other.Setups...)
	f.sources = append(f.sources, other.sources...)
	return nil
}

// ExpandPaths resolves setup file arguments into file paths. A directory
// contributes every .yaml, .yml and .json file beneath it, a pattern is
// expanded with doublestar (so ** matches across directories), and anything
// else is kept as a literal path. The result is deduplicated and keeps
// argument order; directory and pattern matches are sorted.
func ExpandPaths(args ...string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		switch {
		case isDir(arg):
			matches, err := setupFilesIn(arg)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				add(m)
			}
		case hasMeta(arg):
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("expanding glob pattern %q: %w", arg, err)
			}
			slices.Sort(matches)
			for _, m := range matches {
				add(m)
			}
		default:
			add(arg)
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, strings.Join(args, ", "))
	}
	return paths, nil
}

func setupFilesIn(dir string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if slices.Contains(setupFileExtensions, strings.ToLower(filepath.Ext(path))) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	slices.Sort(matches)
	return matches, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
// An unset or empty variable without a default expands to "".
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if val := os.Getenv(submatch[1]); val != "" {
			return val
		}
		return submatch[2]
	})
}
