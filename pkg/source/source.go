package source

import (
	"context"
	"os"
	"slices"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/graph"
)

// Source produces the raw package records of one workspace snapshot.
type Source interface {
	// Load returns the records and any per-directory diagnostics. An error
	// means the snapshot as a whole is unusable; a single unreadable package
	// is reported as a diagnostic instead.
	Load(ctx context.Context) (*Result, error)
}

// Result is the output of [Source.Load].
type Result struct {
	Records     []dag.Record
	Diagnostics []dag.Diagnostic
}

// Static is a [Source] over records already held in memory.
type Static []dag.Record

// Load returns a copy of the records.
func (s Static) Load(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records := make([]dag.Record, len(s))
	for i, r := range s {
		records[i] = dag.Record{
			Name:            r.Name,
			Directory:       r.Directory,
			Dependencies:    slices.Clone(r.Dependencies),
			DevDependencies: slices.Clone(r.DevDependencies),
		}
	}
	return &Result{Records: records}, nil
}

// Snapshot is a [Source] reading a graph previously written with
// graph.WriteGraphFile.
type Snapshot struct {
	Path string
}

// Load reads the snapshot file. Diagnostics recorded in the file are passed
// through unchanged.
func (s Snapshot) Load(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gj, err := readSnapshot(s.Path)
	if err != nil {
		return nil, err
	}
	return &Result{Records: graph.Records(gj), Diagnostics: gj.Diagnostics}, nil
}

func readSnapshot(path string) (graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return graph.Graph{}, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "open snapshot %s", path)
		}
		return graph.Graph{}, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "open snapshot %s", path)
	}
	defer f.Close()
	return graph.DecodeGraph(f)
}
