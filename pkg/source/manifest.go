package source

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

// ManifestReader reads one kind of package manifest.
type ManifestReader interface {
	// Filename is the manifest file name looked up in each package directory.
	Filename() string
	// Read parses the manifest at path. The returned record's Directory is
	// left empty; callers fill it in.
	Read(path string) (dag.Record, error)
}

// DefaultReaders returns the built-in manifest readers in lookup order.
func DefaultReaders() []ManifestReader {
	return []ManifestReader{PackageJSON{}, CargoToml{}, GoMod{}, PyProject{}}
}

// =============================================================================
// package.json
// =============================================================================

// PackageJSON reads npm-style package.json manifests. Both dependencies and
// peerDependencies count as runtime dependencies.
type PackageJSON struct{}

func (PackageJSON) Filename() string { return "package.json" }

func (PackageJSON) Read(path string) (dag.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dag.Record{}, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "read %s", path)
	}

	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return dag.Record{}, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	if pkg.Name == "" {
		return dag.Record{}, apperrors.New(apperrors.ErrCodeMalformedRecord, "%s has no name field", path)
	}
	if err := apperrors.ValidateNpmPackageName(pkg.Name); err != nil {
		return dag.Record{}, apperrors.Wrap(apperrors.ErrCodeMalformedRecord, err, "%s: bad package name", path)
	}

	return dag.Record{
		Name:            pkg.Name,
		Dependencies:    keys(pkg.Dependencies, pkg.PeerDependencies),
		DevDependencies: keys(pkg.DevDependencies),
	}, nil
}

type packageFile struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// =============================================================================
// Cargo.toml
// =============================================================================

// CargoToml reads Rust crate manifests. Build dependencies count as runtime
// dependencies; dev-dependencies are dev-only.
type CargoToml struct{}

func (CargoToml) Filename() string { return "Cargo.toml" }

func (CargoToml) Read(path string) (dag.Record, error) {
	var cargo cargoFile
	if _, err := toml.DecodeFile(path, &cargo); err != nil {
		return dag.Record{}, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	if cargo.Package.Name == "" {
		return dag.Record{}, apperrors.New(apperrors.ErrCodeMalformedRecord, "%s has no [package] name", path)
	}
	if err := apperrors.ValidateCratesPackageName(cargo.Package.Name); err != nil {
		return dag.Record{}, apperrors.Wrap(apperrors.ErrCodeMalformedRecord, err, "%s: bad crate name", path)
	}

	return dag.Record{
		Name:            cargo.Package.Name,
		Dependencies:    crateNames(cargo.Dependencies, cargo.BuildDependencies),
		DevDependencies: crateNames(cargo.DevDependencies),
	}, nil
}

type cargoFile struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

// crateNames returns the names crates are published under. A renamed
// dependency ({ package = "real-name" }) refers to real-name.
func crateNames(tables ...map[string]any) []string {
	var out []string
	for _, table := range tables {
		for key, spec := range table {
			name := key
			if m, ok := spec.(map[string]any); ok {
				if pkg, ok := m["package"].(string); ok && pkg != "" {
					name = pkg
				}
			}
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// =============================================================================
// go.mod
// =============================================================================

// GoMod reads Go module files. The module path is the package name and every
// required module path is a runtime dependency.
type GoMod struct{}

func (GoMod) Filename() string { return "go.mod" }

func (GoMod) Read(path string) (dag.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return dag.Record{}, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "read %s", path)
	}
	defer f.Close()

	module, requires, err := parseGoMod(f)
	if err != nil {
		return dag.Record{}, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	if module == "" {
		return dag.Record{}, apperrors.New(apperrors.ErrCodeMalformedRecord, "%s has no module directive", path)
	}
	return dag.Record{Name: module, Dependencies: requires}, nil
}

func parseGoMod(r io.Reader) (module string, requires []string, err error) {
	inRequire := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "//"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "module "):
			module = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module ")), `"`)
		case line == "require (" || line == "require(":
			inRequire = true
		case inRequire && line == ")":
			inRequire = false
		case strings.HasPrefix(line, "require "):
			if fields := strings.Fields(strings.TrimPrefix(line, "require ")); len(fields) > 0 {
				requires = append(requires, fields[0])
			}
		case inRequire:
			requires = append(requires, strings.Fields(line)[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, err
	}
	slices.Sort(requires)
	return module, slices.Compact(requires), nil
}

// =============================================================================
// pyproject.toml
// =============================================================================

// PyProject reads Python project metadata. PEP 621 [project] tables take
// precedence over [tool.poetry]. Optional dependency groups and poetry dev
// groups are dev-only. Names are normalized per PEP 503.
type PyProject struct{}

func (PyProject) Filename() string { return "pyproject.toml" }

func (PyProject) Read(path string) (dag.Record, error) {
	var py pyprojectFile
	if _, err := toml.DecodeFile(path, &py); err != nil {
		return dag.Record{}, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "parse %s", path)
	}

	if py.Project.Name != "" {
		var dev []string
		for _, group := range py.Project.OptionalDependencies {
			dev = append(dev, group...)
		}
		return dag.Record{
			Name:            normalizePython(py.Project.Name),
			Dependencies:    requirementNames(py.Project.Dependencies),
			DevDependencies: requirementNames(dev),
		}, nil
	}

	poetry := py.Tool.Poetry
	if poetry.Name == "" {
		return dag.Record{}, apperrors.New(apperrors.ErrCodeMalformedRecord, "%s has no project name", path)
	}
	var runtime []string
	for name := range poetry.Dependencies {
		if !strings.EqualFold(name, "python") {
			runtime = append(runtime, name)
		}
	}
	var dev []string
	for name := range poetry.DevDependencies {
		dev = append(dev, name)
	}
	for _, group := range poetry.Group {
		for name := range group.Dependencies {
			dev = append(dev, name)
		}
	}
	return dag.Record{
		Name:            normalizePython(poetry.Name),
		Dependencies:    requirementNames(runtime),
		DevDependencies: requirementNames(dev),
	}, nil
}

type pyprojectFile struct {
	Project struct {
		Name                 string              `toml:"name"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name            string         `toml:"name"`
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

var (
	requirementNameRE = regexp.MustCompile(`^\s*([a-zA-Z0-9][-a-zA-Z0-9._]*)`)
	pythonSeparatorRE = regexp.MustCompile(`[-_.]+`)
)

// requirementNames extracts distribution names from PEP 508 requirement
// strings such as "requests[socks]>=2.0; python_version>'3.8'".
func requirementNames(reqs []string) []string {
	var out []string
	for _, req := range reqs {
		if m := requirementNameRE.FindStringSubmatch(req); m != nil {
			out = append(out, normalizePython(m[1]))
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func normalizePython(name string) string {
	return pythonSeparatorRE.ReplaceAllString(strings.ToLower(name), "-")
}

func keys(maps ...map[string]string) []string {
	var out []string
	for _, m := range maps {
		for k := range m {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
