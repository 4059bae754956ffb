package embeddings

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

const (
	FormatWord2VecBinary = "word2vec-bin"
	FormatWord2VecText   = "word2vec-text"
	FormatGloVe          = "glove"
)

var (
	ErrUnknownFormat   = errors.New("unknown embeddings format")
	ErrDimMismatch     = errors.New("embedding dimension mismatch")
	ErrMalformedVector = errors.New("malformed embedding vector")
)

// Source is a pretrained word-vector lookup. Callers must Close it once the
// vocabulary has been resolved.
type Source interface {
	Lookup(word string) ([]float32, bool)
	Dim() int
	Close() error
}

// Table is an in-memory Source.
type Table struct {
	mu      sync.RWMutex
	vectors map[string][]float32
	dim     int
}

func NewTable(dim int) *Table {
	return &Table{vectors: make(map[string][]float32), dim: dim}
}

// Add stores a copy of vec under word.
func (t *Table) Add(word string, vec []float32) error {
	if len(vec) != t.dim {
		return fmt.Errorf("%w: %q has %d values, want %d", ErrDimMismatch, word, len(vec), t.dim)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.vectors == nil {
		return errors.New("table is closed")
	}
	t.vectors[word] = append([]float32(nil), vec...)
	return nil
}

func (t *Table) Lookup(word string) ([]float32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	vec, ok := t.vectors[word]
	return vec, ok
}

func (t *Table) Dim() int {
	return t.dim
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.vectors)
}

// Close drops the vectors; lookups after Close miss.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.vectors = nil
	return nil
}

// Open reads the embeddings file at path in the given format. Only words for
// which keep returns true are retained; a nil keep retains everything. dim is
// the expected vector size, or 0 to take it from the file.
func Open(format, path string, dim int, keep func(string) bool) (Source, error) {
	if keep == nil {
		keep = func(string) bool { return true }
	}

	slog.Info("[Embeddings] Loading pretrained vectors",
		slog.String("path", path),
		slog.String("format", format))

	var (
		table *Table
		err   error
	)
	switch format {
	case FormatWord2VecBinary:
		table, err = readWord2VecBinary(path, dim, keep)
	case FormatWord2VecText:
		table, err = readText(path, dim, true, keep)
	case FormatGloVe:
		table, err = readText(path, dim, false, keep)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("[Embeddings] Vectors loaded",
		slog.Int("kept", table.Len()),
		slog.Int("dim", table.Dim()))
	return table, nil
}
