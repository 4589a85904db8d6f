package mode

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeProbe map[string]bool

func (f fakeProbe) Exists(path string) bool {
	return f[path]
}

var defaultNames = Names{ProjectConfig: "tsconfig.json", DepsDir: "node_modules"}

func TestSelect_PresenceMatrix(t *testing.T) {
	t.Parallel()
	root := "/project"
	tests := []struct {
		name     string
		tsconfig bool
		deps     bool
		want     Mode
	}{
		{name: "Both", tsconfig: true, deps: true, want: FullResolution},
		{name: "ConfigOnly", tsconfig: true, want: SyntaxOnly},
		{name: "DepsOnly", deps: true, want: SyntaxOnly},
		{name: "Neither", want: SyntaxOnly},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			probe := fakeProbe{
				filepath.Join(root, "tsconfig.json"): tt.tsconfig,
				filepath.Join(root, "node_modules"):  tt.deps,
			}
			d := Select(root, probe, defaultNames)
			if d.Mode != tt.want {
				t.Fatalf("Select() mode = %v, want %v", d.Mode, tt.want)
			}
			if d.ConfigPath != filepath.Join(root, "tsconfig.json") {
				t.Fatalf("unexpected config path %q", d.ConfigPath)
			}
		})
	}
}

func TestSelect_CustomNames(t *testing.T) {
	t.Parallel()
	probe := fakeProbe{"/r/tsconfig.build.json": true, "/r/vendor": true}
	d := Select("/r", probe, Names{ProjectConfig: "tsconfig.build.json", DepsDir: "vendor"})
	if d.Mode != FullResolution {
		t.Fatalf("expected full resolution, got %v", d.Mode)
	}
}

func TestSelect_OSProbe(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if got := Select(root, nil, defaultNames).Mode; got != SyntaxOnly {
		t.Fatalf("expected syntax-only for empty dir, got %v", got)
	}
	if err := os.WriteFile(filepath.Join(root, "tsconfig.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := Select(root, OSProbe{}, defaultNames).Mode; got != FullResolution {
		t.Fatalf("expected full resolution, got %v", got)
	}
}

func TestModeString(t *testing.T) {
	t.Parallel()
	if FullResolution.String() != "full-resolution" || SyntaxOnly.String() != "syntax-only" {
		t.Fatal("unexpected mode names")
	}
}
