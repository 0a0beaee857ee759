package format

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned when a filename does not end in one of the
// supported archive suffixes.
var ErrUnsupported = errors.New("unsupported archive format")

// Format identifies one of the supported archive kinds.
type Format int

const (
	Zip Format = iota
	TarGz
	TarXz
)

// ordered longest/most-specific first so that Resolve never mistakes
// ".tar.gz" for a shorter suffix.
var all = []Format{TarGz, TarXz, Zip}

func (f Format) String() string {
	switch f {
	case Zip:
		return "zip"
	case TarGz:
		return "tar.gz"
	case TarXz:
		return "tar.xz"
	default:
		return "unknown"
	}
}

// Suffix returns the canonical filename suffix for the format.
func (f Format) Suffix() string {
	switch f {
	case Zip:
		return ".zip"
	case TarGz:
		return ".tar.gz"
	case TarXz:
		return ".tar.xz"
	default:
		return ""
	}
}

// Compression returns the token used to open the tar stream's byte
// decompression ("gz" or "xz"). Empty for zip, which handles compression
// per entry.
func (f Format) Compression() string {
	switch f {
	case TarGz:
		return "gz"
	case TarXz:
		return "xz"
	default:
		return ""
	}
}

// Resolve splits filename into its archive format and stem. The match is
// purely lexical: the trailing characters are compared, case-sensitive,
// against each known suffix, longest first. The stem is the filename with
// the matched suffix removed, so stem + Suffix() == filename always holds.
//
// A filename with no extension, an unknown extension, or a bare ".tar" or
// ".gz" fails with ErrUnsupported.
func Resolve(filename string) (Format, string, error) {
	for _, f := range all {
		suffix := f.Suffix()
		if strings.HasSuffix(filename, suffix) {
			return f, strings.TrimSuffix(filename, suffix), nil
		}
	}
	return 0, "", fmt.Errorf("%w: %q", ErrUnsupported, trailingSuffix(filename))
}

// trailingSuffix reports the dot-joined extension chain of filename, for
// error messages ("archive.tar.lz" -> ".tar.lz"). A dotless filename has
// no suffix at all.
func trailingSuffix(filename string) string {
	if i := strings.Index(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ""
}
