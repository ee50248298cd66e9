// Package manifest handles vci.toml project configuration.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project configuration file.
const FileName = "vci.toml"

// Manifest represents a vci.toml project configuration.
type Manifest struct {
	Project Project   `toml:"project"`
	Source  Source    `toml:"source"`
	Build   Build     `toml:"build"`
	Run     RunConfig `toml:"run"`
	Log     LogConfig `toml:"log"`

	// Dir is the directory containing the vci.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures the program to compile.
type Source struct {
	Entry string `toml:"entry"`
}

// Build configures chunk output.
type Build struct {
	Output  string `toml:"output"`
	Listing bool   `toml:"listing"`
}

// RunConfig configures execution.
type RunConfig struct {
	Trace  bool   `toml:"trace"`
	Report string `toml:"report"` // sqlite database, empty disables reports
}

// LogConfig configures logging.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"` // empty logs to stderr
}

// Default returns a manifest with every default applied.
func Default(name string) *Manifest {
	m := &Manifest{Project: Project{Name: name, Version: "0.1.0"}}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Source.Entry == "" {
		m.Source.Entry = "main.vci"
	}
	if m.Build.Output == "" {
		m.Build.Output = strings.TrimSuffix(m.Source.Entry, filepath.Ext(m.Source.Entry)) + ".vcic"
	}
}

// Load parses a vci.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if m.Log.Verbosity < 0 {
		return nil, fmt.Errorf("%s: log verbosity must not be negative", path)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a vci.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Write stores the manifest as vci.toml in dir. An existing file is not
// overwritten.
func Write(dir string, m *Manifest) error {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("cannot encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// EntryPath returns the absolute path of the entry source file.
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Source.Entry)
}

// OutputPath returns the absolute path chunks are built to.
func (m *Manifest) OutputPath() string {
	return m.resolve(m.Build.Output)
}

// ReportPath returns the absolute path of the report database, or "" when
// reports are disabled.
func (m *Manifest) ReportPath() string {
	if m.Run.Report == "" {
		return ""
	}
	return m.resolve(m.Run.Report)
}

// LogFile returns the absolute path of the log file, or nil for stderr.
// The pointer form is what commonlog.Configure takes.
func (m *Manifest) LogFile() *string {
	if m.Log.File == "" {
		return nil
	}
	path := m.resolve(m.Log.File)
	return &path
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
