package dataset

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/sample"
)

// Writer streams dataset entries as a JSON array. It is safe for concurrent
// use.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	count  int
	closed bool
}

// NewWriter creates a writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write appends an entry. The entry is encoded completely before anything is
// written, so an entry failing to encode leaves the output untouched.
func (w *Writer) Write(m sample.Meta) error {
	data, err := json.Marshal(m)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot encode sample %d", m.ID)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return core.Error(core.EINVALID, "dataset writer already closed")
	}
	sep := ",\n"
	if w.count == 0 {
		sep = "["
	}
	if _, err = io.WriteString(w.w, sep); err != nil {
		return err
	}
	if _, err = w.w.Write(data); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of entries written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close terminates the array. It does not close the underlying writer.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	end := "]"
	if w.count == 0 {
		end = "[]"
	}
	_, err := io.WriteString(w.w, end)
	return err
}

// ReadAll parses a complete dataset file and validates every entry.
func ReadAll(r io.Reader) ([]sample.Meta, error) {
	var metas []sample.Meta
	if err := json.NewDecoder(r).Decode(&metas); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse dataset")
	}
	for _, m := range metas {
		if err := m.Validate(); err != nil {
			return metas, err
		}
	}
	return metas, nil
}
