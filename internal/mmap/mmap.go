// Package mmap maps files into memory so encoded values can be decoded
// without copying them into the heap first.
package mmap

import (
	"fmt"
	"os"
)

// Hint describes the expected access pattern of a mapping.
type Hint uint

const (
	// Normal leaves read-ahead to the operating system.
	Normal Hint = iota

	// Sequential requests aggressive read-ahead. Maps to MADV_SEQUENTIAL
	// on Unix.
	Sequential

	// Random is a hint that read-ahead is less useful than normally. Maps
	// to MADV_RANDOM on Unix.
	Random
)

// Map maps the first size bytes of f read-only. An empty file maps to a nil
// slice, which Unmap accepts.
func Map(f *os.File, size int64, hint Hint) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if size < 0 || size > MaxSize {
		return nil, fmt.Errorf("mmap: cannot map %d bytes", size)
	}
	return mmap(f, int(size), hint)
}

// Unmap releases a mapping returned by Map.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return munmap(b)
}
