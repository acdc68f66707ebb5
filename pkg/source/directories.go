package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

// Directories is a [Source] reading one manifest per package directory.
type Directories struct {
	// Dirs lists the package directories. Duplicates are ignored.
	Dirs []string
	// Readers are tried in order; the first whose manifest exists wins.
	// Nil means [DefaultReaders].
	Readers []ManifestReader
	// Concurrency bounds parallel manifest reads. Zero or negative means
	// runtime.NumCPU().
	Concurrency int
}

// outcome is the per-directory result of a manifest read: exactly one of
// record or diagnostic is set.
type outcome struct {
	dir        string
	record     *dag.Record
	diagnostic *dag.Diagnostic
}

// Load reads every directory's manifest concurrently. A directory without a
// recognised manifest, or whose manifest cannot be parsed, yields an
// unreadable-record diagnostic; a manifest without a package name yields a
// malformed-record one. Load fails only when ctx is cancelled.
func (d Directories) Load(ctx context.Context) (*Result, error) {
	readers := d.Readers
	if readers == nil {
		readers = DefaultReaders()
	}
	for _, r := range readers {
		if err := apperrors.ValidateManifestFilename(r.Filename()); err != nil {
			return nil, err
		}
	}
	workers := d.Concurrency
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	dirs := slices.Clone(d.Dirs)
	for i, dir := range dirs {
		dirs[i] = filepath.Clean(dir)
	}
	slices.Sort(dirs)
	dirs = slices.Compact(dirs)

	p := pool.NewWithResults[outcome]().WithContext(ctx).WithMaxGoroutines(workers)
	for _, dir := range dirs {
		p.Go(func(ctx context.Context) (outcome, error) {
			if err := ctx.Err(); err != nil {
				return outcome{}, err
			}
			return readDir(dir, readers), nil
		})
	}
	outcomes, err := p.Wait()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(outcomes, func(a, b outcome) int { return strings.Compare(a.dir, b.dir) })
	res := &Result{}
	for _, o := range outcomes {
		if o.record != nil {
			res.Records = append(res.Records, *o.record)
		}
		if o.diagnostic != nil {
			res.Diagnostics = append(res.Diagnostics, *o.diagnostic)
		}
	}
	return res, nil
}

func readDir(dir string, readers []ManifestReader) outcome {
	for _, r := range readers {
		path := filepath.Join(dir, r.Filename())
		if _, err := os.Stat(path); err != nil {
			continue
		}
		rec, err := r.Read(path)
		if err != nil {
			kind := dag.DiagnosticUnreadableRecord
			if apperrors.Is(err, apperrors.ErrCodeMalformedRecord) {
				kind = dag.DiagnosticMalformedRecord
			}
			return outcome{dir: dir, diagnostic: &dag.Diagnostic{
				Kind:      kind,
				Directory: dir,
				Message:   apperrors.UserMessage(err) + causeSuffix(err),
			}}
		}
		rec.Directory = dir
		return outcome{dir: dir, record: &rec}
	}

	names := make([]string, len(readers))
	for i, r := range readers {
		names[i] = r.Filename()
	}
	return outcome{dir: dir, diagnostic: &dag.Diagnostic{
		Kind:      dag.DiagnosticUnreadableRecord,
		Directory: dir,
		Message:   "no manifest found (looked for " + strings.Join(names, ", ") + ")",
	}}
}

// causeSuffix appends the underlying parse error, which UserMessage omits.
func causeSuffix(err error) string {
	var e *apperrors.Error
	if errors.As(err, &e) && e.Cause != nil {
		return ": " + e.Cause.Error()
	}
	return ""
}
