package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

func sample(t *testing.T) *dag.Graph {
	t.Helper()
	g, err := dag.Build([]dag.Record{
		{Name: "app", Directory: "apps/app", Dependencies: []string{"lib", "left-pad"}, DevDependencies: []string{"testkit"}},
		{Name: "lib", Directory: "packages/lib"},
		{Name: "testkit", Directory: "packages/testkit", Dependencies: []string{"lib"}},
		{Name: "loop", Directory: "packages/loop", Dependencies: []string{"loop"}},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return g
}

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		build     func(t *testing.T) *dag.Graph
		wantPkgs  int
		wantEdges int
		check     func(t *testing.T, g Graph)
	}{
		{
			name: "Empty",
			build: func(t *testing.T) *dag.Graph {
				g, _ := dag.Build(nil)
				return g
			},
		},
		{
			name:      "Workspace",
			build:     sample,
			wantPkgs:  4,
			wantEdges: 3,
			check: func(t *testing.T, g Graph) {
				app := g.Packages[0]
				if app.Name != "app" || app.Directory != "apps/app" {
					t.Errorf("Packages[0] = %+v, want app in apps/app", app)
				}
				if !slices.Equal(app.Dependencies, []string{"lib"}) {
					t.Errorf("app.Dependencies = %v, want [lib]", app.Dependencies)
				}
				if !slices.Equal(app.DevDependencies, []string{"testkit"}) {
					t.Errorf("app.DevDependencies = %v, want [testkit]", app.DevDependencies)
				}
				if len(g.Diagnostics) != 1 || g.Diagnostics[0].Kind != dag.DiagnosticSelfDependency {
					t.Errorf("Diagnostics = %v, want one self-dependency", g.Diagnostics)
				}
				if g.Version != FormatVersion {
					t.Errorf("Version = %d, want %d", g.Version, FormatVersion)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalGraph(tt.build(t))
			if err != nil {
				t.Fatalf("MarshalGraph() error: %v", err)
			}
			var g Graph
			if err := json.Unmarshal(data, &g); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if len(g.Packages) != tt.wantPkgs {
				t.Errorf("got %d packages, want %d", len(g.Packages), tt.wantPkgs)
			}
			if len(g.Edges) != tt.wantEdges {
				t.Errorf("got %d edges, want %d", len(g.Edges), tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestMarshalGraph_Deterministic(t *testing.T) {
	a, _ := MarshalGraph(sample(t))
	b, _ := MarshalGraph(sample(t))
	if !bytes.Equal(a, b) {
		t.Error("MarshalGraph() output differs between identical graphs")
	}
}

func TestRoundTrip_PreservesStructure(t *testing.T) {
	orig := sample(t)

	var buf bytes.Buffer
	if err := WriteGraph(orig, &buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph() error: %v", err)
	}

	if back.Fingerprint() != orig.Fingerprint() {
		t.Errorf("Fingerprint() = %s, want %s", back.Fingerprint(), orig.Fingerprint())
	}
	if !slices.Equal(back.Edges(), orig.Edges()) {
		t.Errorf("Edges() = %v, want %v", back.Edges(), orig.Edges())
	}
}

func TestGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.json")
	orig := sample(t)

	if err := WriteGraphFile(orig, path); err != nil {
		t.Fatalf("WriteGraphFile() error: %v", err)
	}
	back, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile() error: %v", err)
	}
	if !slices.Equal(back.Names(), orig.Names()) {
		t.Errorf("Names() = %v, want %v", back.Names(), orig.Names())
	}
}

func TestReadGraphFile_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	dup := filepath.Join(dir, "dup.json")
	dupData := `{"version":1,"packages":[{"name":"a","directory":"x"},{"name":"a","directory":"y"}],"edges":[]}`
	if err := os.WriteFile(dup, []byte(dupData), 0o644); err != nil {
		t.Fatal(err)
	}
	future := filepath.Join(dir, "future.json")
	if err := os.WriteFile(future, []byte(`{"version":99,"packages":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		code apperrors.Code
	}{
		{"missing", filepath.Join(dir, "nope.json"), apperrors.ErrCodeFileNotFound},
		{"malformed", bad, apperrors.ErrCodeInvalidFormat},
		{"duplicate", dup, apperrors.ErrCodeDuplicateIdentity},
		{"future version", future, apperrors.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraphFile(tt.path)
			if !apperrors.Is(err, tt.code) {
				t.Errorf("ReadGraphFile() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRecords_FoldsExtraEdges(t *testing.T) {
	gj := Graph{
		Packages: []Package{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Edges: []Edge{
			{From: "a", To: "b"},
			{From: "a", To: "c", Dev: true},
			{From: "ghost", To: "a"},
		},
	}

	records := Records(gj)
	if !slices.Equal(records[0].Dependencies, []string{"b"}) {
		t.Errorf("Dependencies = %v, want [b]", records[0].Dependencies)
	}
	if !slices.Equal(records[0].DevDependencies, []string{"c"}) {
		t.Errorf("DevDependencies = %v, want [c]", records[0].DevDependencies)
	}
}

func TestUnmarshalGraph(t *testing.T) {
	g, err := UnmarshalGraph([]byte(`{"version":1,"packages":[{"name":"a","dependents":["b"]}],"edges":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Packages) != 1 || g.Packages[0].Name != "a" {
		t.Errorf("Packages = %+v", g.Packages)
	}

	_, err = UnmarshalGraph([]byte("["))
	if err == nil || !strings.Contains(err.Error(), "decode graph") {
		t.Errorf("UnmarshalGraph(invalid) error = %v", err)
	}
	var syntax *json.SyntaxError
	if !errors.As(err, &syntax) {
		t.Errorf("error should wrap the JSON syntax error, got %T", err)
	}
}
