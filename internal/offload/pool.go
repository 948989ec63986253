// Package offload runs blocking filesystem calls on a fixed set of worker
// goroutines so request goroutines only wait on channels, and total disk
// concurrency stays bounded.
package offload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/yourname/fileshare/internal/models"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned when a job is submitted after Close.
var ErrClosed = errors.New("offload: pool closed")

const defaultWorkers = 4

// Handle is an open upload target. It is owned by exactly one write sequence:
// every call that takes a Handle either returns it for the next step or
// releases it.
type Handle struct {
	file    File
	path    string
	written int64
}

// Path returns the filesystem path the handle was created for.
func (h *Handle) Path() string { return h.path }

// Written returns the number of bytes appended so far.
func (h *Handle) Written() int64 { return h.written }

type job struct {
	run  func()
	done chan struct{}
}

// Pool executes filesystem jobs on a bounded set of workers.
type Pool struct {
	fs   FS
	jobs chan job

	eg        errgroup.Group
	closing   chan struct{}
	closeOnce sync.Once
	closeMu   sync.RWMutex
	closed    bool
	queued    atomic.Int64
	inFlight  atomic.Int64
}

// New starts a pool with the given number of workers. workers <= 0 selects a
// small default.
func New(workers int, fsys FS) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if fsys == nil {
		fsys = OSFS{}
	}

	p := &Pool{
		fs:      fsys,
		jobs:    make(chan job),
		closing: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.eg.Go(p.worker)
	}

	return p
}

func (p *Pool) worker() error {
	for j := range p.jobs {
		p.queued.Add(-1)
		p.inFlight.Add(1)
		j.run()
		p.inFlight.Add(-1)
		close(j.done)
	}

	return nil
}

// Close stops accepting jobs and waits for the workers to drain.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		close(p.closing)

		// Submitters hold the read lock while sending, so no send can race the close.
		p.closeMu.Lock()
		p.closed = true
		close(p.jobs)
		p.closeMu.Unlock()
	})

	return p.eg.Wait()
}

// Queued reports jobs waiting for a free worker.
func (p *Pool) Queued() int64 { return p.queued.Load() }

// InFlight reports jobs currently running on a worker.
func (p *Pool) InFlight() int64 { return p.inFlight.Load() }

// do hands fn to a worker and waits for it to finish. If ctx ends before a
// worker picks the job up, fn never runs. Once started, fn always runs to
// completion so a file is never left half-owned.
func (p *Pool) do(ctx context.Context, fn func()) error {
	j := job{run: fn, done: make(chan struct{})}

	p.closeMu.RLock()
	if p.closed {
		p.closeMu.RUnlock()
		return ErrClosed
	}
	p.queued.Add(1)
	select {
	case p.jobs <- j:
	case <-ctx.Done():
		p.queued.Add(-1)
		p.closeMu.RUnlock()
		return ctx.Err()
	case <-p.closing:
		p.queued.Add(-1)
		p.closeMu.RUnlock()
		return ErrClosed
	}
	p.closeMu.RUnlock()

	<-j.done
	return nil
}

// Create creates (or truncates) path on a worker.
func (p *Pool) Create(ctx context.Context, path string) (*Handle, error) {
	var (
		f   File
		err error
	)
	if subErr := p.do(ctx, func() { f, err = p.fs.Create(path) }); subErr != nil {
		return nil, subErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", models.ErrIO, path, err)
	}

	return &Handle{file: f, path: path}, nil
}

// WriteChunk appends chunk to h on a worker and hands h back for the next
// call. On failure h is closed and nil is returned; whatever was written
// before the failure stays on disk.
func (p *Pool) WriteChunk(ctx context.Context, h *Handle, chunk []byte) (*Handle, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: write on released handle", models.ErrIO)
	}

	var (
		n   int
		err error
	)
	subErr := p.do(ctx, func() {
		n, err = h.file.Write(chunk)
		h.written += int64(n)
		if err != nil {
			_ = h.file.Close()
		}
	})
	if subErr != nil {
		p.abandon(ctx, h)
		return nil, subErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", models.ErrIO, h.path, err)
	}

	return h, nil
}

// Release closes h on a worker.
func (p *Pool) Release(ctx context.Context, h *Handle) error {
	if h == nil {
		return nil
	}

	var err error
	if subErr := p.do(ctx, func() { err = h.file.Close() }); subErr != nil {
		p.abandon(ctx, h)
		return subErr
	}
	if err != nil {
		return fmt.Errorf("%w: close %s: %v", models.ErrIO, h.path, err)
	}

	return nil
}

// abandon closes h when the pool could not take the job, e.g. the request
// context was cancelled while every worker was busy. The close still goes
// through a worker; it runs inline only once the pool is closed.
func (p *Pool) abandon(ctx context.Context, h *Handle) {
	if err := p.do(context.WithoutCancel(ctx), func() { _ = h.file.Close() }); err != nil {
		_ = h.file.Close()
	}
}
