package datapack

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const BundleVersion = 1

// BundleHeader is written as a JSON line ahead of the gob body so tools can
// identify a bundle without decoding it.
type BundleHeader struct {
	Version        int      `json:"version"`
	Namespace      string   `json:"namespace"`
	Planets        []string `json:"planets"`
	Seed           int64    `json:"seed"`
	SplinesDigest  string   `json:"splines_digest"`
	TectonicDigest string   `json:"tectonic_digest"`
	PackDigest     string   `json:"pack_digest"`
}

// Bundle is a compressed single-file copy of a rendered pack.
type Bundle struct {
	Header BundleHeader
	Files  []File
}

func NewBundle(p *Pack, h BundleHeader) Bundle {
	h.Version = BundleVersion
	h.Namespace = p.Namespace
	h.PackDigest = p.Digest()
	files := make([]File, len(p.Files))
	copy(files, p.Files)
	return Bundle{Header: h, Files: files}
}

// Pack rebuilds the pack the bundle was made from.
func (b Bundle) Pack() *Pack {
	files := make([]File, len(b.Files))
	copy(files, b.Files)
	return &Pack{Namespace: b.Header.Namespace, Files: files}
}

func WriteBundle(path string, b Bundle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)
	hb, _ := json.Marshal(b.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&b); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

// ReadBundleHeader decodes only the leading header line.
func ReadBundleHeader(path string) (BundleHeader, error) {
	var h BundleHeader
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("bundle header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("bundle header: %w", err)
	}
	return h, nil
}

func ReadBundle(path string) (Bundle, error) {
	var b Bundle
	f, err := os.Open(path)
	if err != nil {
		return b, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return b, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	// The gob body repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return b, fmt.Errorf("bundle header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&b); err != nil {
		return b, fmt.Errorf("gob decode: %w", err)
	}
	if b.Header.Version != BundleVersion {
		return b, fmt.Errorf("bundle version %d, want %d", b.Header.Version, BundleVersion)
	}
	if got := b.Pack().Digest(); got != b.Header.PackDigest {
		return b, fmt.Errorf("bundle digest mismatch: %s != %s", got, b.Header.PackDigest)
	}
	return b, nil
}
