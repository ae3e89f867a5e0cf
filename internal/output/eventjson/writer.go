package eventjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"hydrovigil/internal/logger"
	"hydrovigil/pkg/models"
)

// Writer outputs engine events as JSON lines.
type Writer struct {
	out     io.Writer
	closer  io.Closer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewWriter creates a JSONL writer at path, truncating any existing file.
// The path "-" writes to stdout.
func NewWriter(path string) (*Writer, error) {
	if path == "-" {
		return NewStreamWriter(os.Stdout), nil
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	logger.Infof("Event JSON writer initialized: %s", path)
	w := NewStreamWriter(f)
	w.closer = f
	return w, nil
}

// NewStreamWriter writes JSON lines to out. Close does not close out.
func NewStreamWriter(out io.Writer) *Writer {
	return &Writer{out: out, encoder: json.NewEncoder(out)}
}

// WriteEvents writes a batch of events.
func (w *Writer) WriteEvents(_ context.Context, events []*models.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, ev := range events {
		if err := w.encoder.Encode(ev); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

// Close closes the output file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closer != nil {
		err := w.closer.Close()
		w.closer = nil
		return err
	}
	return nil
}
