package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"

	"github.com/yourname/fileshare/internal/models"
)

// Reader is a multipart reader that only reports a clean end of parts once
// the closing delimiter has been read. *multipart.Reader also returns a bare
// io.EOF when the body stops right after a delimiter line, which would make a
// cut-off request look complete.
type Reader struct {
	mr  *multipart.Reader
	src *closingTracker
}

// NewReader reads the multipart body described by contentType, the value of
// the request's Content-Type header.
func NewReader(body io.Reader, contentType string) (*Reader, error) {
	if contentType == "" {
		return nil, fmt.Errorf("%w: missing content-type", models.ErrMalformedRequest)
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: content-type: %v", models.ErrMalformedRequest, err)
	}
	if mediaType != "multipart/form-data" && mediaType != "multipart/mixed" {
		return nil, fmt.Errorf("%w: content-type %s is not multipart", models.ErrMalformedRequest, mediaType)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("%w: no multipart boundary", models.ErrMalformedRequest)
	}

	src := newClosingTracker(body, boundary)
	return &Reader{mr: multipart.NewReader(src, boundary), src: src}, nil
}

// NextPart implements PartReader.
func (r *Reader) NextPart() (*multipart.Part, error) {
	p, err := r.mr.NextPart()
	if err == io.EOF && !r.src.closed() {
		return nil, fmt.Errorf("multipart: body ended before the closing delimiter: %w", io.ErrUnexpectedEOF)
	}
	return p, err
}

// closingTracker watches the raw body for the closing delimiter
// "--boundary--" at the start of a line.
type closingTracker struct {
	r     io.Reader
	delim []byte
	tail  []byte
	seen  bool
	eof   bool
}

func newClosingTracker(r io.Reader, boundary string) *closingTracker {
	delim := []byte("\n--" + boundary + "--")
	t := &closingTracker{r: r, delim: delim, tail: make([]byte, 0, 2*len(delim))}
	// The body may open with the closing delimiter.
	t.tail = append(t.tail, '\n')
	return t
}

func (t *closingTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 && !t.seen {
		t.scan(p[:n])
	}
	if errors.Is(err, io.EOF) {
		t.eof = true
	}
	return n, err
}

// closed reports whether the stream can have ended cleanly: either the
// source is not exhausted, so the decoder stopped on a delimiter it read, or
// the closing delimiter went past.
func (t *closingTracker) closed() bool {
	return t.seen || !t.eof
}

func (t *closingTracker) scan(b []byte) {
	keep := len(t.delim) - 1

	head := b
	if len(head) > keep {
		head = head[:keep]
	}
	joint := append(t.tail, head...)
	if bytes.Contains(joint, t.delim) || bytes.Contains(b, t.delim) {
		t.seen = true
		return
	}

	if len(b) >= keep {
		t.tail = append(t.tail[:0], b[len(b)-keep:]...)
		return
	}
	if len(joint) > keep {
		joint = joint[len(joint)-keep:]
	}
	t.tail = append(t.tail[:0], joint...)
}
