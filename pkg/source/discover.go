package source

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar"
	"gopkg.in/yaml.v3"

	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

// Discover returns the package directory patterns declared by the workspace
// at root. It checks, in order, pnpm-workspace.yaml, the workspaces field of
// package.json and the [workspace] members of Cargo.toml. A root with none of
// these yields no patterns and no error.
func Discover(root string) ([]string, error) {
	if data, err := os.ReadFile(filepath.Join(root, "pnpm-workspace.yaml")); err == nil {
		var ws struct {
			Packages []string `yaml:"packages"`
		}
		if err := yaml.Unmarshal(data, &ws); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "parse pnpm-workspace.yaml")
		}
		return ws.Packages, nil
	}

	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg struct {
			Workspaces json.RawMessage `json:"workspaces"`
		}
		if err := json.Unmarshal(data, &pkg); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "parse package.json")
		}
		if patterns, ok := npmWorkspaces(pkg.Workspaces); ok {
			return patterns, nil
		}
	}

	var cargo struct {
		Workspace struct {
			Members []string `toml:"members"`
			Exclude []string `toml:"exclude"`
		} `toml:"workspace"`
	}
	path := filepath.Join(root, "Cargo.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cargo); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "parse Cargo.toml")
		}
		patterns := slices.Clone(cargo.Workspace.Members)
		for _, ex := range cargo.Workspace.Exclude {
			patterns = append(patterns, "!"+ex)
		}
		return patterns, nil
	}
	return nil, nil
}

// npmWorkspaces accepts both the array form and the {"packages": [...]}
// object form of the workspaces field.
func npmWorkspaces(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Packages, true
	}
	return nil, false
}

// Expand resolves directory patterns relative to root. Patterns support "*"
// and "**"; a leading "!" excludes matching directories. Only directories are
// returned, sorted and without duplicates.
func Expand(root string, patterns []string) ([]string, error) {
	var include, exclude []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(p, "!"); ok {
			exclude = append(exclude, filepath.ToSlash(filepath.Clean(rest)))
			continue
		}
		include = append(include, p)
	}

	var dirs []string
	for _, p := range include {
		matches, err := doublestar.Glob(filepath.Join(root, p))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "bad pattern %q", p)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || !info.IsDir() {
				continue
			}
			if excluded(root, m, exclude) {
				continue
			}
			dirs = append(dirs, m)
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs), nil
}

func excluded(root, dir string, patterns []string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
