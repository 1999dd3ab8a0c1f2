package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"planetgen.ai/internal/sampler"
)

// JSONLZstdWriter appends one JSON document per line to a zstd stream.
type JSONLZstdWriter struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func NewJSONLZstdWriter(path string) (*JSONLZstdWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &JSONLZstdWriter{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err1 := w.w.Flush()
	err2 := w.enc.Close()
	err3 := w.f.Close()
	w.f = nil
	for _, err := range []error{err1, err2, err3} {
		if err != nil {
			return err
		}
	}
	return nil
}

// ColumnLog records sampled columns of one planet.
type ColumnLog struct{ w *JSONLZstdWriter }

type columnEntry struct {
	Planet string `json:"planet"`
	sampler.Column
}

func NewColumnLog(path string) (*ColumnLog, error) {
	w, err := NewJSONLZstdWriter(path)
	if err != nil {
		return nil, err
	}
	return &ColumnLog{w: w}, nil
}

func (l *ColumnLog) WriteColumns(planet string, cols []sampler.Column) error {
	for _, c := range cols {
		if err := l.w.Write(columnEntry{Planet: planet, Column: c}); err != nil {
			return err
		}
	}
	return nil
}

func (l *ColumnLog) Close() error { return l.w.Close() }

// ReadColumns decodes a column log written by ColumnLog.
func ReadColumns(path string) ([]sampler.Column, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []sampler.Column
	jd := json.NewDecoder(dec)
	for jd.More() {
		var e columnEntry
		if err := jd.Decode(&e); err != nil {
			return out, err
		}
		out = append(out, e.Column)
	}
	return out, nil
}
