// Package offloadtest provides filesystems with injected failures for tests
// of code built on offload.Pool.
package offloadtest

import (
	"sync"
	"syscall"

	"github.com/yourname/fileshare/internal/offload"
)

// FaultFS creates real files but fails selected operations.
type FaultFS struct {
	// FailCreate makes every Create fail with this error.
	FailCreate error

	// FailWrite is the 1-based index of the write (counted per file) that
	// returns WriteErr. Zero disables write failures.
	FailWrite int

	// WriteErr defaults to ENOSPC.
	WriteErr error

	mu      sync.Mutex
	created []string
	writes  []int
}

// Create implements offload.FS.
func (f *FaultFS) Create(name string) (offload.File, error) {
	if f.FailCreate != nil {
		return nil, f.FailCreate
	}

	file, err := offload.OSFS{}.Create(name)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.created = append(f.created, name)
	f.mu.Unlock()

	return &faultFile{File: file, fs: f}, nil
}

// Created lists every path successfully created, in order.
func (f *FaultFS) Created() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

// Writes returns the chunk sizes seen by all files, in order.
func (f *FaultFS) Writes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.writes...)
}

type faultFile struct {
	offload.File
	fs     *FaultFS
	nwrite int
}

func (ff *faultFile) Write(p []byte) (int, error) {
	ff.nwrite++

	ff.fs.mu.Lock()
	ff.fs.writes = append(ff.fs.writes, len(p))
	ff.fs.mu.Unlock()

	if ff.fs.FailWrite > 0 && ff.nwrite == ff.fs.FailWrite {
		if ff.fs.WriteErr != nil {
			return 0, ff.fs.WriteErr
		}
		return 0, syscall.ENOSPC
	}

	return ff.File.Write(p)
}
