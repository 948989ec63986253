// Package upload ingests multipart upload requests: it walks the parts in
// order, resolves a safe name for each and streams the part body to disk
// through an offload.Pool, one chunk at a time.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/yourname/fileshare/internal/filename"
	"github.com/yourname/fileshare/internal/models"
	"github.com/yourname/fileshare/internal/offload"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName       = "github.com/yourname/fileshare/internal/upload"
	defaultChunkSize = 64 << 10
)

// PartReader yields multipart parts in arrival order. Reader and
// *multipart.Reader implement it.
type PartReader interface {
	NextPart() (*multipart.Part, error)
}

// Options configures an Ingester.
type Options struct {
	// Root is the absolute directory uploads are written into.
	Root string

	// Pool runs the filesystem calls.
	Pool *offload.Pool

	// ChunkSize bounds the bytes read from a part per write.
	ChunkSize int

	Logger *slog.Logger
	Tracer trace.Tracer

	// OnTransition, when set, observes every state change.
	OnTransition func(from, to State)
}

// Ingester drives upload sessions. It is safe for concurrent use; each call
// to Ingest owns its own session.
type Ingester struct {
	root         string
	pool         *offload.Pool
	chunkSize    int
	log          *slog.Logger
	tracer       trace.Tracer
	onTransition func(from, to State)
}

// New returns an Ingester writing into opts.Root.
func New(opts Options) *Ingester {
	in := &Ingester{
		root:         opts.Root,
		pool:         opts.Pool,
		chunkSize:    opts.ChunkSize,
		log:          opts.Logger,
		tracer:       opts.Tracer,
		onTransition: opts.OnTransition,
	}
	if in.chunkSize <= 0 {
		in.chunkSize = defaultChunkSize
	}
	if in.log == nil {
		in.log = slog.Default()
	}
	if in.tracer == nil {
		in.tracer = otel.Tracer(tracerName)
	}

	return in
}

// Ingest consumes every part of parts and writes each to its own file under
// the root. The first malformed part, decode error or I/O error aborts the
// request; files already written, including a truncated current one, stay
// on disk. The returned result lists the parts that completed.
func (in *Ingester) Ingest(ctx context.Context, parts PartReader) (models.UploadResult, error) {
	ctx, span := in.tracer.Start(ctx, "upload.Ingest")
	defer span.End()

	s := &session{
		in:    in,
		ctx:   ctx,
		parts: parts,
		buf:   make([]byte, in.chunkSize),
		log:   in.log,
	}
	s.run()

	span.SetAttributes(
		attribute.Int("upload.parts", len(s.result.Files)),
		attribute.Int64("upload.bytes", s.result.Bytes()),
	)
	if s.err != nil {
		span.RecordError(s.err)
		span.SetStatus(codes.Error, s.err.Error())
	}

	return s.result, s.err
}

// session is the state of one request. It is confined to the request
// goroutine.
type session struct {
	in    *Ingester
	ctx   context.Context
	parts PartReader
	log   *slog.Logger

	state State
	err   error

	part     *multipart.Part
	partSpan trace.Span
	field    string
	name     string
	handle   *offload.Handle
	buf      []byte

	result models.UploadResult
}

func (s *session) run() {
	for !s.state.Terminal() {
		switch s.state {
		case StateAwaitingPart:
			s.awaitPart()
		case StateStreamingChunks:
			s.streamChunk()
		case StatePartComplete:
			s.completePart()
		}
	}
}

func (s *session) transition(to State) {
	from := s.state
	s.state = to
	s.log.Debug("upload state", "from", from, "to", to, "part", s.name)
	if s.in.onTransition != nil {
		s.in.onTransition(from, to)
	}
}

func (s *session) awaitPart() {
	part, err := s.parts.NextPart()
	// The decoder wraps a premature end of input; only a bare io.EOF is the
	// closing delimiter.
	if err == io.EOF {
		s.transition(StateRequestComplete)
		return
	}
	if err != nil {
		s.fail(classifyRead(err))
		return
	}

	s.part = part
	if !isFormData(part) {
		s.fail(fmt.Errorf("%w: part without form-data content-disposition", models.ErrMalformedRequest))
		return
	}

	s.field = part.FormName()
	s.name = filename.Resolve(part.FileName())
	_, s.partSpan = s.in.tracer.Start(s.ctx, "upload.part", trace.WithAttributes(
		attribute.String("upload.field", s.field),
		attribute.String("upload.file", s.name),
	))
	s.transition(StateStreamingChunks)
}

// streamChunk opens the target on the first call for a part and afterwards
// moves one chunk from the part to the file.
func (s *session) streamChunk() {
	if s.handle == nil {
		path, err := filename.Join(s.in.root, s.name)
		if err != nil {
			s.fail(err)
			return
		}
		if s.handle, err = s.in.pool.Create(s.ctx, path); err != nil {
			s.fail(err)
			return
		}
		return
	}

	n, readErr := s.part.Read(s.buf)
	if n > 0 {
		h, err := s.in.pool.WriteChunk(s.ctx, s.handle, s.buf[:n])
		if err != nil {
			s.result.PartialBytes += s.handle.Written()
			s.handle = nil
			s.fail(err)
			return
		}
		s.handle = h
	}

	switch {
	case readErr == nil:
	case errors.Is(readErr, io.EOF):
		s.transition(StatePartComplete)
	default:
		s.fail(classifyRead(readErr))
	}
}

func (s *session) completePart() {
	h := s.handle
	s.handle = nil
	if err := s.in.pool.Release(s.ctx, h); err != nil {
		s.result.PartialBytes += h.Written()
		s.fail(err)
		return
	}

	stored := models.StoredFile{
		Field: s.field,
		Name:  s.name,
		Path:  h.Path(),
		Size:  h.Written(),
	}
	s.result.Files = append(s.result.Files, stored)
	s.log.Info("stored upload", "field", stored.Field, "name", stored.Name, "bytes", stored.Size)

	s.endPart(nil)
	s.transition(StateAwaitingPart)
}

// fail releases whatever the current part holds and stops the session. A
// partially written file is left in place.
func (s *session) fail(err error) {
	if s.handle != nil {
		s.result.PartialBytes += s.handle.Written()
		if relErr := s.in.pool.Release(context.WithoutCancel(s.ctx), s.handle); relErr != nil {
			s.log.Warn("release after failure", "name", s.name, "err", relErr)
		}
		s.handle = nil
	}

	s.err = err
	s.endPart(err)
	s.transition(StateFailed)
}

func (s *session) endPart(err error) {
	if s.part != nil {
		_ = s.part.Close()
		s.part = nil
	}
	if s.partSpan != nil {
		if err != nil {
			s.partSpan.RecordError(err)
			s.partSpan.SetStatus(codes.Error, err.Error())
		}
		s.partSpan.End()
		s.partSpan = nil
	}
}

// isFormData reports whether p carries a form-data Content-Disposition.
func isFormData(p *multipart.Part) bool {
	v := p.Header.Get("Content-Disposition")
	if v == "" {
		return false
	}
	disposition, _, err := mime.ParseMediaType(v)
	return err == nil && disposition == "form-data"
}

// classifyRead maps errors from the multipart decoder onto the service errors.
func classifyRead(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit %d bytes", models.ErrTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", models.ErrDecode, err)
}
