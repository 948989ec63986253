package shareclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type received struct {
	mu    sync.Mutex
	files map[string]string
}

func uploadServer(t *testing.T, rec *received) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		mr, err := r.MultipartReader()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for {
			p, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			b, _ := io.ReadAll(p)
			rec.mu.Lock()
			rec.files[p.FormName()+"/"+p.FileName()] = string(b)
			rec.mu.Unlock()
		}
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/a b.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "pulled")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPush(t *testing.T) {
	rec := &received{files: map[string]string{}}
	srv := uploadServer(t, rec)

	var progress bytes.Buffer
	c := New(srv.URL+"/", WithProgress(&progress))
	err := c.Push(context.Background(), writeTemp(t, "one.txt", "first"), writeTemp(t, "two.txt", "second"))
	if err != nil {
		t.Fatal(err)
	}

	if rec.files["file/one.txt"] != "first" || rec.files["file/two.txt"] != "second" {
		t.Fatalf("server got %v", rec.files)
	}
	if out := progress.String(); !strings.Contains(out, "Uploading 2 file(s)") || !strings.HasSuffix(out, "✓\n") {
		t.Fatalf("progress output %q", out)
	}
}

func TestPush_Errors(t *testing.T) {
	c := New("http://127.0.0.1:0")
	if err := c.Push(context.Background()); err == nil {
		t.Fatal("expected error for empty push")
	}
	if err := c.Push(context.Background(), filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
	if err := c.Push(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestPush_ServerRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	err := New(srv.URL).Push(context.Background(), writeTemp(t, "x.txt", "x"))
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("err = %v", err)
	}
}

func TestPull(t *testing.T) {
	srv := uploadServer(t, &received{files: map[string]string{}})
	c := New(srv.URL)

	var dst bytes.Buffer
	n, err := c.Pull(context.Background(), "a b.txt", &dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 || dst.String() != "pulled" {
		t.Fatalf("pulled %d %q", n, dst.String())
	}

	if _, err := c.Pull(context.Background(), "nope", io.Discard); !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("err = %v", err)
	}
}

func TestProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := newProgressBar(&out, "Downloading x", 2048)
	_, _ = bar.Write(make([]byte, 1024))
	bar.finish(nil)
	bar.finish(errors.New("ignored"))

	got := out.String()
	if !strings.Contains(got, "[================                ]  50% 1.0 KB/2.0 KB ✓\n") {
		t.Fatalf("output %q", got)
	}
	if strings.Contains(got, "ignored") {
		t.Fatal("finish ran twice")
	}

	var nilBar *progressBar
	nilBar.finish(nil)
	if newProgressBar(nil, "x", 1) != nil {
		t.Fatal("nil writer must disable the bar")
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{0: "0 B", 1023: "1023 B", 1024: "1.0 KB", 5 << 20: "5.0 MB"}
	for in, want := range cases {
		if got := humanBytes(in); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
