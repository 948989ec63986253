package filename

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yourname/fileshare/internal/models"
)

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"report.pdf":                        "report.pdf",
		"a b.txt":                           "a_b.txt",
		"../../etc/passwd":                  "passwd",
		`..\..\windows\system32\cmd.exe`:    "cmd.exe",
		"/var/tmp/x.txt":                    "x.txt",
		"nested/dir/":                       "dir",
		"what?.txt":                         "what_.txt",
		"C:evil.txt":                        "C_evil.txt",
		"tab\tname":                         "tab_name",
		"nul\x00byte":                       "nul_byte",
		".hidden":                           "hidden",
		"  spaced  ":                        "__spaced__",
		"привет мир.txt":                    "привет_мир.txt",
		"":                                  "",
		".":                                 "",
		"..":                                "",
		"...":                               "",
		"///":                               "",
		`\\server\share\`:                   "share",
		"a/../../b.bin":                     "b.bin",
		strings.Repeat("x", 300) + ".txt":   strings.Repeat("x", 255),
	}

	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitize_TruncatesOnRuneBoundary(t *testing.T) {
	in := strings.Repeat("я", 200) // 400 bytes
	got := Sanitize(in)
	if len(got) > maxNameBytes {
		t.Fatalf("len = %d, want <= %d", len(got), maxNameBytes)
	}
	if strings.ContainsRune(got, '�') {
		t.Fatalf("truncation split a rune: %q", got)
	}
}

func TestResolve_AnonymousNamesAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		name := Resolve("")
		if name == "" {
			t.Fatal("empty name")
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate anonymous name %q", name)
		}
		seen[name] = struct{}{}
	}
}

func TestResolve_UnusableNameFallsBackToRandom(t *testing.T) {
	for _, in := range []string{"..", "/", " . "} {
		if got := Resolve(in); got == "" || strings.Contains(got, "..") {
			t.Fatalf("Resolve(%q) = %q", in, got)
		}
	}
}

func TestResolve_StaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	inputs := []string{
		"../escape.txt",
		"../../../../../../etc/shadow",
		`..\..\boot.ini`,
		"/etc/passwd",
		"./../x",
		"a/b/c/../../../..",
		"..\x00/x",
		"%2e%2e%2fencoded",
		"",
	}

	for _, in := range inputs {
		abs, err := Join(root, Resolve(in))
		if err != nil {
			t.Fatalf("Join(Resolve(%q)): %v", in, err)
		}
		if filepath.Dir(abs) != filepath.Clean(root) {
			t.Fatalf("Resolve(%q) escaped root: %s", in, abs)
		}
	}
}

func TestJoin_RejectsEscapes(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"", "..", "../x", "a/b", "x\x00"} {
		if _, err := Join(root, name); !errors.Is(err, models.ErrPathEscape) {
			t.Errorf("Join(%q) err = %v, want ErrPathEscape", name, err)
		}
	}
}
