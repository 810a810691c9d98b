// Package memory is a slice-backed row writer for tests.
package memory

import (
	"context"
	"sync"
)

type Writer struct {
	mu   sync.Mutex
	rows map[string][][]any
}

func NewWriter() *Writer {
	return &Writer{rows: make(map[string][][]any)}
}

func (w *Writer) AppendRow(ctx context.Context, sheet string, row []any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows[sheet] = append(w.rows[sheet], row)
	return nil
}

// Rows returns a copy of the rows appended to the sheet.
func (w *Writer) Rows(sheet string) [][]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]any, len(w.rows[sheet]))
	copy(out, w.rows[sheet])
	return out
}
