package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Files named *.zst carry a BMP inside a single zstd frame. Everything
// else is a plain BMP.
const compressedExt = ".zst"

func isCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), compressedExt)
}

// readInput loads the whole input, unwrapping zstd if the name asks for it.
func readInput(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !isCompressed(path) {
		return io.ReadAll(f)
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	plain, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return plain, nil
}

// writeOutput stores data at path, compressing it if the name ends in
// .zst, and returns the number of bytes that hit the disk.
func writeOutput(path string, data []byte) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	if !isCompressed(path) {
		n, err := out.Write(data)
		if err != nil {
			return 0, err
		}
		return int64(n), out.Close()
	}

	b := &bytes.Buffer{}
	enc, err := zstd.NewWriter(b)
	if err != nil {
		return 0, err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return 0, err
	}
	if err := enc.Close(); err != nil {
		return 0, err
	}

	n, err := out.Write(b.Bytes())
	if err != nil {
		return 0, err
	}
	return int64(n), out.Close()
}

func formatSize(size int64) string {
	if size < 1024*1024 {
		return fmt.Sprintf("%.2f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}
