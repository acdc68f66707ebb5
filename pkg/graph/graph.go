package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *dag.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *dag.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a graph as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(g *dag.Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the rebuilt graph.
func ReadGraphFile(path string) (*dag.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader and rebuilds it.
// Use ReadGraphFile for files or pass bytes.NewReader for in-memory data.
func ReadGraph(r io.Reader) (*dag.Graph, error) {
	return readGraphFrom(r)
}

// DecodeGraph decodes the serialization format from r without rebuilding.
func DecodeGraph(r io.Reader) (Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Graph{}, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode graph")
	}
	return data, nil
}

// EncodeGraph writes an already converted graph as indented JSON. Use it
// when the serialized form is amended before writing, e.g. with diagnostics
// collected outside the graph.
func EncodeGraph(gj Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(gj); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode graph")
	}
	return nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g *dag.Graph, w io.Writer) error {
	return EncodeGraph(FromDAG(g), w)
}

func readGraphFrom(r io.Reader) (*dag.Graph, error) {
	data, err := DecodeGraph(r)
	if err != nil {
		return nil, err
	}
	return ToDAG(data)
}
