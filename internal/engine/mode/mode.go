// Package mode decides whether a source tree can be analysed with full type
// resolution or only syntactically.
package mode

import (
	"os"
	"path/filepath"
)

type Mode int

const (
	SyntaxOnly Mode = iota
	FullResolution
)

func (m Mode) String() string {
	if m == FullResolution {
		return "full-resolution"
	}
	return "syntax-only"
}

// Probe answers presence questions about the file system.
type Probe interface {
	Exists(path string) bool
}

// OSProbe checks the real file system.
type OSProbe struct{}

func (OSProbe) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Names are the conventional entries probed under the root.
type Names struct {
	ProjectConfig string // tsconfig.json
	DepsDir       string // node_modules
}

type Decision struct {
	Mode       Mode
	Root       string
	ConfigPath string
	DepsDir    string
}

// Select returns FullResolution when both the project configuration and the
// installed-dependency directory exist under root, SyntaxOnly otherwise.
// Loading the configuration is left to the caller.
func Select(root string, probe Probe, names Names) Decision {
	if probe == nil {
		probe = OSProbe{}
	}
	d := Decision{
		Mode:       SyntaxOnly,
		Root:       root,
		ConfigPath: filepath.Join(root, names.ProjectConfig),
		DepsDir:    filepath.Join(root, names.DepsDir),
	}
	if probe.Exists(d.ConfigPath) && probe.Exists(d.DepsDir) {
		d.Mode = FullResolution
	}
	return d
}
