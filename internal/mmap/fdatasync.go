package mmap

import "os"

// Fdatasync flushes the data written to f to stable storage, skipping
// metadata such as modification times where the operating system allows.
//
// Errors are not recoverable: after a failed fsync the page cache may no
// longer reflect what is on disk, so callers should treat the file as
// suspect rather than retry.
func Fdatasync(f *os.File) error {
	return fdatasync(f)
}
