package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verttool/vert/internal/format"
)

// The destination is the working directory when the archive is nested, and
// a stem-named subdirectory otherwise.

// chdir switches the working directory for the duration of the test,
// restoring the original directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Fatal(err)
		}
	})
}

func TestExtractFileNestedDestination(t *testing.T) {
	arcDir := t.TempDir()
	path := filepath.Join(arcDir, "logs.tar.gz")
	createTarGz(t, path, []tarEntry{
		dir("logs/"),
		file("logs/one.log", "first"),
		file("logs/two.log", "second"),
	})

	chdir(t, t.TempDir())
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	dest, err := ExtractFile(path, format.TarGz, "logs", testConfig())
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if dest != cwd {
		t.Errorf("dest = %q, want working directory %q", dest, cwd)
	}

	got, err := os.ReadFile(filepath.Join(cwd, "logs", "one.log"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(got) != "first" {
		t.Errorf("one.log = %q, want \"first\"", got)
	}
}

func TestExtractFileFlatDestination(t *testing.T) {
	arcDir := t.TempDir()
	path := filepath.Join(arcDir, "photos.zip")
	createZip(t, path, []zipEntry{
		{name: "a.jpg", body: "aaa"},
		{name: "b.jpg", body: "bbb"},
	})

	chdir(t, t.TempDir())
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	dest, err := ExtractFile(path, format.Zip, "photos", testConfig())
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if want := filepath.Join(cwd, "photos"); dest != want {
		t.Errorf("dest = %q, want %q", dest, want)
	}

	for name, want := range map[string]string{"a.jpg": "aaa", "b.jpg": "bbb"} {
		got, err := os.ReadFile(filepath.Join(dest, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestExtractFileUnsafeAborts(t *testing.T) {
	arcDir := t.TempDir()
	path := filepath.Join(arcDir, "evil.tar.gz")
	// two root-level files make the archive non-nested, so the destination
	// is the stem-named subdirectory
	createTarGz(t, path, []tarEntry{
		file("ok.txt", "fine"),
		file("also-ok.txt", "fine"),
		file("../../etc-passwd", "evil"),
	})

	chdir(t, t.TempDir())

	if _, err := ExtractFile(path, format.TarGz, "evil", testConfig()); err == nil {
		t.Fatal("ExtractFile succeeded on an archive with a traversal entry")
	}
	// no rollback: entries written before the abort stay in place
	if _, err := os.Stat(filepath.Join("evil", "ok.txt")); err != nil {
		t.Errorf("entry written before the abort was not left in place: %v", err)
	}
}

func TestListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.zip")
	createZip(t, path, []zipEntry{
		{name: "readme.md", body: "# hi"},
		{name: "notes/todo.txt", body: "todo"},
	})

	var sb strings.Builder
	if err := ListFile(path, format.Zip, testConfig(), &sb); err != nil {
		t.Fatalf("ListFile: %v", err)
	}
	for _, want := range []string{"readme.md", "notes/todo.txt"} {
		if !strings.Contains(sb.String(), want) {
			t.Errorf("listing is missing %q", want)
		}
	}
}
