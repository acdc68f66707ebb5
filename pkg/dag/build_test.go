package dag

import (
	"errors"
	"slices"
	"strings"
	"testing"

	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

func mustBuild(t *testing.T, records []Record) *Graph {
	t.Helper()
	g, err := Build(records)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return g
}

func TestBuild_Empty(t *testing.T) {
	g := mustBuild(t, nil)
	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
	if len(g.Diagnostics()) != 0 {
		t.Errorf("Diagnostics() = %v, want none", g.Diagnostics())
	}
}

func TestBuild_ZeroGraph(t *testing.T) {
	var g Graph
	if g.Len() != 0 || g.Has("a") || len(g.Edges()) != 0 {
		t.Error("zero Graph should behave as empty")
	}
	if _, err := g.ImpactSet("a"); !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("ImpactSet() on zero graph error = %v, want ErrPackageNotFound", err)
	}
}

func TestBuild_EdgesAndDependents(t *testing.T) {
	g := mustBuild(t, []Record{
		{Name: "app", Directory: "apps/app", Dependencies: []string{"ui", "core", "react"}},
		{Name: "ui", Directory: "packages/ui", Dependencies: []string{"core"}},
		{Name: "core", Directory: "packages/core"},
	})

	if got, want := g.Names(), []string{"app", "core", "ui"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}

	app, _ := g.Package("app")
	if got, want := app.Deps(), []string{"core", "ui"}; !slices.Equal(got, want) {
		t.Errorf("app.Deps() = %v, want %v (external react must be ignored)", got, want)
	}
	core, _ := g.Package("core")
	if got, want := core.Dependents(), []string{"app", "ui"}; !slices.Equal(got, want) {
		t.Errorf("core.Dependents() = %v, want %v", got, want)
	}
	if core.Dir() != "packages/core" {
		t.Errorf("core.Dir() = %q, want packages/core", core.Dir())
	}

	wantEdges := []Edge{
		{From: "app", To: "core"},
		{From: "app", To: "ui"},
		{From: "ui", To: "core"},
	}
	if got := g.Edges(); !slices.Equal(got, wantEdges) {
		t.Errorf("Edges() = %v, want %v", got, wantEdges)
	}
}

func TestBuild_DependentsInvertDeps(t *testing.T) {
	g := mustBuild(t, []Record{
		{Name: "a", Dependencies: []string{"b", "c"}},
		{Name: "b", Dependencies: []string{"c", "d"}},
		{Name: "c", DevDependencies: []string{"a"}},
		{Name: "d"},
	})

	for _, x := range g.Names() {
		px, _ := g.Package(x)
		var want []string
		for _, y := range g.Names() {
			py, _ := g.Package(y)
			if py.DependsOn(x) {
				want = append(want, y)
			}
		}
		if got := px.Dependents(); !slices.Equal(got, want) {
			t.Errorf("%s.Dependents() = %v, want %v", x, got, want)
		}
	}
}

func TestBuild_DevDependencies(t *testing.T) {
	g := mustBuild(t, []Record{
		{Name: "app", Dependencies: []string{"lib"}, DevDependencies: []string{"lib", "testkit"}},
		{Name: "lib"},
		{Name: "testkit"},
	})

	app, _ := g.Package("app")
	if got, want := app.Deps(), []string{"lib", "testkit"}; !slices.Equal(got, want) {
		t.Errorf("Deps() = %v, want %v", got, want)
	}
	if got, want := app.DevDeps(), []string{"testkit"}; !slices.Equal(got, want) {
		t.Errorf("DevDeps() = %v, want %v", got, want)
	}
	if app.IsDevDep("lib") {
		t.Error("IsDevDep(lib) = true, want false: lib is also a runtime dependency")
	}
	if !app.IsDevDep("testkit") {
		t.Error("IsDevDep(testkit) = false, want true")
	}

	edges := g.Edges()
	if !slices.Contains(edges, Edge{From: "app", To: "testkit", Dev: true}) {
		t.Errorf("Edges() = %v, want dev edge app->testkit", edges)
	}
}

func TestBuild_CollapsesDuplicateDeclarations(t *testing.T) {
	g := mustBuild(t, []Record{
		{Name: "a", Dependencies: []string{"b", "b", "", "b"}},
		{Name: "b"},
	})
	a, _ := g.Package("a")
	if got := a.Deps(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Deps() = %v, want [b]", got)
	}
	b, _ := g.Package("b")
	if got := b.Dependents(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Dependents() = %v, want [a]", got)
	}
}

func TestBuild_SelfDependency(t *testing.T) {
	g := mustBuild(t, []Record{
		{Name: "a", Directory: "pkgs/a", Dependencies: []string{"a", "b"}, DevDependencies: []string{"a"}},
		{Name: "b"},
	})

	a, _ := g.Package("a")
	if a.DependsOn("a") {
		t.Error("self edge should be dropped")
	}
	diags := g.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("Diagnostics() = %v, want exactly one", diags)
	}
	if diags[0].Kind != DiagnosticSelfDependency || diags[0].Package != "a" {
		t.Errorf("diagnostic = %+v, want self-dependency on a", diags[0])
	}
}

func TestBuild_MalformedRecords(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"empty name", Record{Directory: "pkgs/empty"}},
		{"whitespace name", Record{Name: "   ", Directory: "pkgs/blank"}},
		{"control chars", Record{Name: "bad\x00name", Directory: "pkgs/ctrl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustBuild(t, []Record{tt.record, {Name: "ok", Dependencies: []string{tt.record.Name}}})

			if g.Len() != 1 || !g.Has("ok") {
				t.Errorf("Names() = %v, want [ok]", g.Names())
			}
			diags := g.Diagnostics()
			if len(diags) != 1 || diags[0].Kind != DiagnosticMalformedRecord {
				t.Fatalf("Diagnostics() = %v, want one malformed-record", diags)
			}
			if diags[0].Directory != tt.record.Directory {
				t.Errorf("Directory = %q, want %q", diags[0].Directory, tt.record.Directory)
			}
		})
	}
}

func TestBuild_KeepsPathLikeNames(t *testing.T) {
	g := mustBuild(t, []Record{
		{Name: "a..b", Directory: "pkgs/ab"},
		{Name: "tools//gen", Directory: "pkgs/gen"},
		{Name: "app", Directory: "apps/app", Dependencies: []string{"a..b", "tools//gen"}},
	})

	if want := []string{"a..b", "app", "tools//gen"}; !slices.Equal(g.Names(), want) {
		t.Errorf("Names() = %v, want %v", g.Names(), want)
	}
	app, _ := g.Package("app")
	if want := []string{"a..b", "tools//gen"}; !slices.Equal(app.Deps(), want) {
		t.Errorf("app.Deps() = %v, want %v", app.Deps(), want)
	}
	ab, _ := g.Package("a..b")
	if want := []string{"app"}; !slices.Equal(ab.Dependents(), want) {
		t.Errorf("a..b.Dependents() = %v, want %v", ab.Dependents(), want)
	}
	if d := g.Diagnostics(); len(d) != 0 {
		t.Errorf("Diagnostics() = %v, want none", d)
	}
}

func TestBuild_DuplicateIdentity(t *testing.T) {
	g, err := Build([]Record{
		{Name: "shared", Directory: "packages/shared"},
		{Name: "other", Directory: "packages/other"},
		{Name: "shared", Directory: "legacy/shared"},
	})

	if g != nil {
		t.Error("Build() returned a partial graph on duplicate identity")
	}
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("error = %v, want ErrDuplicateIdentity", err)
	}
	if !apperrors.Is(err, apperrors.ErrCodeDuplicateIdentity) {
		t.Errorf("code = %q, want %q", apperrors.GetCode(err), apperrors.ErrCodeDuplicateIdentity)
	}
	msg := err.Error()
	for _, dir := range []string{"packages/shared", "legacy/shared"} {
		if !strings.Contains(msg, dir) {
			t.Errorf("error %q should name directory %s", msg, dir)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	records := []Record{
		{Name: "a", Directory: "a", Dependencies: []string{"c", "b"}},
		{Name: "b", Directory: "b", Dependencies: []string{"c"}, DevDependencies: []string{"a"}},
		{Name: "c", Directory: "c", Dependencies: []string{"c"}},
		{Name: "", Directory: "broken"},
	}
	first := mustBuild(t, records)

	shuffled := slices.Clone(records)
	slices.Reverse(shuffled)
	second := mustBuild(t, shuffled)

	if !slices.Equal(first.Names(), second.Names()) {
		t.Errorf("Names() differ: %v vs %v", first.Names(), second.Names())
	}
	if !slices.Equal(first.Edges(), second.Edges()) {
		t.Errorf("Edges() differ: %v vs %v", first.Edges(), second.Edges())
	}
	if !slices.Equal(first.Diagnostics(), second.Diagnostics()) {
		t.Errorf("Diagnostics() differ: %v vs %v", first.Diagnostics(), second.Diagnostics())
	}
	if first.Fingerprint() != second.Fingerprint() {
		t.Errorf("Fingerprint() differs: %s vs %s", first.Fingerprint(), second.Fingerprint())
	}
}

func TestGraph_AccessorsReturnCopies(t *testing.T) {
	g := mustBuild(t, []Record{
		{Name: "a", Dependencies: []string{"b"}},
		{Name: "b"},
	})

	names := g.Names()
	names[0] = "mutated"
	a, _ := g.Package("a")
	deps := a.Deps()
	deps[0] = "mutated"

	if g.Names()[0] != "a" {
		t.Error("Names() exposed internal state")
	}
	if a.Deps()[0] != "b" {
		t.Error("Deps() exposed internal state")
	}
}

func TestFingerprint(t *testing.T) {
	base := []Record{
		{Name: "a", Directory: "a", Dependencies: []string{"b"}},
		{Name: "b", Directory: "b"},
	}
	fp := mustBuild(t, base).Fingerprint()

	tests := []struct {
		name    string
		records []Record
		same    bool
	}{
		{"identical", base, true},
		{"external dep added", []Record{
			{Name: "a", Directory: "a", Dependencies: []string{"b", "lodash"}},
			{Name: "b", Directory: "b"},
		}, true},
		{"edge becomes dev", []Record{
			{Name: "a", Directory: "a", DevDependencies: []string{"b"}},
			{Name: "b", Directory: "b"},
		}, false},
		{"directory moved", []Record{
			{Name: "a", Directory: "apps/a", Dependencies: []string{"b"}},
			{Name: "b", Directory: "b"},
		}, false},
		{"edge removed", []Record{
			{Name: "a", Directory: "a"},
			{Name: "b", Directory: "b"},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustBuild(t, tt.records).Fingerprint()
			if (got == fp) != tt.same {
				t.Errorf("Fingerprint() = %s, base %s, want same=%v", got, fp, tt.same)
			}
		})
	}
}

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		d    Diagnostic
		want string
	}{
		{Diagnostic{Kind: DiagnosticSelfDependency, Package: "a", Message: "edge dropped"}, "self-dependency: a: edge dropped"},
		{Diagnostic{Kind: DiagnosticUnreadableRecord, Directory: "pkgs/x", Message: "bad json"}, "unreadable-record: pkgs/x: bad json"},
		{Diagnostic{Kind: DiagnosticMalformedRecord, Message: "no name"}, "malformed-record: no name"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
