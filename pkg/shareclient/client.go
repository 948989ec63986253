// Package shareclient pushes files to and pulls files from a fileshare server.
package shareclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourname/fileshare/pkg/shareproto"
)

// ErrUnexpectedStatus is returned for any non-2xx response.
var ErrUnexpectedStatus = errors.New("shareclient: unexpected status")

// Client talks to one server.
type Client struct {
	base     string
	c        *http.Client
	progress io.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.c = c }
}

// WithProgress draws a progress bar into w; nil disables it.
func WithProgress(w io.Writer) Option {
	return func(cl *Client) { cl.progress = w }
}

// New создаёт клиента для сервера по адресу baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		c:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Push загружает файлы одним multipart-запросом. Тело формируется на лету
// через io.Pipe, файлы целиком в память не читаются.
func (c *Client) Push(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return errors.New("shareclient: nothing to push")
	}

	var total int64
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return err
		}
		if st.IsDir() {
			return fmt.Errorf("shareclient: %s is a directory", p)
		}
		total += st.Size()
	}

	label := fmt.Sprintf("Uploading %d file(s)", len(paths))
	if len(paths) == 1 {
		label = "Uploading " + filepath.Base(paths[0])
	}
	bar := newProgressBar(c.progress, label, total)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeParts(mw, bar, paths))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+shareproto.PathUpload, pr)
	if err != nil {
		_ = pr.Close()
		bar.finish(err)
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.c.Do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		bar.finish(err)
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if err = checkStatus(resp); err != nil {
		bar.finish(err)
		return err
	}
	bar.finish(nil)

	return nil
}

func writeParts(mw *multipart.Writer, bar *progressBar, paths []string) error {
	for _, p := range paths {
		if err := writePart(mw, bar, p); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writePart(mw *multipart.Writer, bar *progressBar, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := mw.CreateFormFile(shareproto.FormField, filepath.Base(path))
	if err != nil {
		return err
	}
	var src io.Reader = f
	if bar != nil {
		src = io.TeeReader(f, bar)
	}
	_, err = io.Copy(w, src)
	return err
}

// Pull скачивает файл name в dst и возвращает число записанных байт.
func (c *Client) Pull(ctx context.Context, name string, dst io.Writer) (int64, error) {
	u := c.base + shareproto.FilesPrefix + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err = checkStatus(resp); err != nil {
		return 0, err
	}

	bar := newProgressBar(c.progress, "Downloading "+name, resp.ContentLength)
	var src io.Reader = resp.Body
	if bar != nil {
		src = io.TeeReader(resp.Body, bar)
	}
	n, err := io.Copy(dst, src)
	bar.finish(err)

	return n, err
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	return fmt.Errorf("%w: %s %s: %s", ErrUnexpectedStatus, resp.Request.Method, resp.Request.URL.Path, resp.Status)
}
