// Package archive opens the supported archive formats for listing and
// extraction, decides the destination directory from the nesting layout of
// the archive contents, and enforces that no entry escapes that destination.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/verttool/vert/internal/format"
)

var (
	// ErrCorrupt is returned when a file carries a supported suffix but its
	// content fails format validation.
	ErrCorrupt = errors.New("corrupt archive")

	// ErrUnsafePath is returned when an archive entry would be written
	// outside the destination directory, or is a special file that is never
	// extracted. The whole extraction aborts on the first such entry.
	ErrUnsafePath = errors.New("unsafe entry path")
)

// Config carries the collaborator state the engine needs. It is built by the
// caller and passed in explicitly; the engine holds no process-wide state.
type Config struct {
	Logger           *slog.Logger
	UseExternalTools bool
}

func (c *Config) log() *slog.Logger {
	if c != nil && c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Archive is an open, format-specific handle over one archive file. A handle
// is owned by a single list or extract operation and must be closed when
// that operation ends, on every exit path.
type Archive interface {
	// List prints the entry table in archive order, mirroring the native
	// inspection output of the backend.
	List(w io.Writer) error

	// Nested reports whether the archive contents already sit under a
	// single top-level entry. It counts entries whose name contains no
	// path separator; more than one such entry means the contents are a
	// flat pile and the archive is not nested. The scan short-circuits as
	// soon as the second root-level entry is seen. Zero or one root-level
	// entries count as nested.
	Nested() (bool, error)

	// Extract writes every entry below dest, preserving relative paths.
	// Entries with absolute paths, parent traversal, or special file types
	// abort the extraction; already-written files are not rolled back.
	Extract(dest string) error

	Close() error
}

// Open opens the file at path with the backend implied by f and validates
// that the content actually matches the claimed format. Validation failures
// return ErrCorrupt, distinct from a name-resolution failure.
func Open(path string, f format.Format, cfg *Config) (Archive, error) {
	switch f {
	case format.Zip:
		return openZip(path, cfg)
	case format.TarGz, format.TarXz:
		return openTar(path, f, cfg)
	default:
		return nil, fmt.Errorf("no backend for format %q", f)
	}
}

// ExtractFile runs the full extraction pipeline for one resolved file:
// open, nesting check, destination computation, extraction. The returned
// destination is the current working directory when the archive is nested,
// or cwd/stem otherwise. The destination directory is created if absent;
// its parent must already exist.
func ExtractFile(path string, f format.Format, stem string, cfg *Config) (string, error) {
	cfg.log().Info("extracting contents", "file", path)

	a, err := Open(path, f, cfg)
	if err != nil {
		return "", err
	}
	defer a.Close()

	nested, err := a.Nested()
	if err != nil {
		return "", err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dest := cwd
	if !nested {
		dest = filepath.Join(cwd, stem)
	}

	if err := os.Mkdir(dest, 0o755); err != nil && !os.IsExist(err) {
		return "", err
	}
	cfg.log().Info("contents will be extracted", "destination", dest)

	if cfg != nil && cfg.UseExternalTools {
		err = externalExtract(path, f, dest)
	} else {
		err = a.Extract(dest)
	}
	if err != nil {
		return "", err
	}

	cfg.log().Info("finished extracting", "file", path)
	return dest, nil
}

// ListFile opens the file at path and prints its entry table to w.
func ListFile(path string, f format.Format, cfg *Config, w io.Writer) error {
	cfg.log().Info("listing contents", "file", path)

	a, err := Open(path, f, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.List(w)
}

// checkMagic reads len(magic) bytes at offset from path and compares them
// against the expected signature.
func checkMagic(path string, offset int, magic []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, len(magic))
	if _, err := f.ReadAt(buf, int64(offset)); err != nil {
		return fmt.Errorf("%w: %s is too short for its format signature", ErrCorrupt, filepath.Base(path))
	}
	if !bytes.Equal(buf, magic) {
		return fmt.Errorf("%w: %s has no valid format signature", ErrCorrupt, filepath.Base(path))
	}
	return nil
}

// secureJoin joins an entry name onto dest and rejects names that would
// land outside dest (absolute names, or ".." traversal after cleaning).
func secureJoin(dest, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: absolute entry %q", ErrUnsafePath, name)
	}
	target := filepath.Join(dest, name)
	if escapes(dest, target) {
		return "", fmt.Errorf("%w: entry %q escapes destination", ErrUnsafePath, name)
	}
	return target, nil
}

// escapes reports whether path, already cleaned by filepath.Join, lies
// outside the dest tree.
func escapes(dest, path string) bool {
	rel, err := filepath.Rel(dest, path)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// writeSymlink creates a symlink at target pointing at linkname, refusing
// absolute targets and targets that resolve outside dest. The link target
// is recorded as-is; it is never followed during extraction.
func writeSymlink(dest, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("%w: symlink %q has absolute target %q", ErrUnsafePath, target, linkname)
	}
	if escapes(dest, filepath.Join(filepath.Dir(target), linkname)) {
		return fmt.Errorf("%w: symlink %q targets %q outside destination", ErrUnsafePath, target, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	os.Remove(target)
	return os.Symlink(linkname, target)
}
