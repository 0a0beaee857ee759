package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/verttool/vert/internal/format"
)

var (
	// magicGzip: 0x1F8B
	magicGzip = []byte{0x1f, 0x8b}
	// magicXz: 0xFD377A585A00
	magicXz = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

type tarArchive struct {
	path        string
	f           *os.File
	compression string
	cfg         *Config
}

func openTar(path string, fo format.Format, cfg *Config) (*tarArchive, error) {
	magic := magicGzip
	if fo == format.TarXz {
		magic = magicXz
	}
	if err := checkMagic(path, 0, magic); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	a := &tarArchive{path: path, f: f, compression: fo.Compression(), cfg: cfg}
	if err := a.validate(); err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

// validate decompresses enough of the stream to read the first tar header,
// catching files that carry the right compression magic but wrap something
// other than a tar archive. An empty tar is valid.
func (t *tarArchive) validate() error {
	tr, closeReader, err := t.reader()
	if err != nil {
		return err
	}
	defer closeReader()

	if _, err := tr.Next(); err != nil && err != io.EOF {
		return fmt.Errorf("%w: %s does not contain a tar stream", ErrCorrupt, filepath.Base(t.path))
	}
	return nil
}

// reader rewinds the underlying file and layers a fresh decompressor under
// a new tar reader. Tar streams are single-pass, so the nesting scan and
// the extraction each start from their own reader.
func (t *tarArchive) reader() (*tar.Reader, func() error, error) {
	if _, err := t.f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, err
	}

	switch t.compression {
	case "gz":
		gzr, err := gzip.NewReader(t.f)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return tar.NewReader(gzr), gzr.Close, nil
	case "xz":
		xzr, err := xz.NewReader(t.f)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return tar.NewReader(xzr), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("no decompressor for %q", t.compression)
	}
}

func (t *tarArchive) List(w io.Writer) error {
	tr, closeReader, err := t.reader()
	if err != nil {
		return err
	}
	defer closeReader()

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}

		owner := fmt.Sprintf("%s/%s", hdr.Uname, hdr.Gname)
		if hdr.Uname == "" && hdr.Gname == "" {
			owner = fmt.Sprintf("%d/%d", hdr.Uid, hdr.Gid)
		}
		link := ""
		if hdr.Typeflag == tar.TypeSymlink || hdr.Typeflag == tar.TypeLink {
			link = " -> " + hdr.Linkname
		}
		fmt.Fprintf(w, "%s %-12s %10d %s %s%s\n",
			hdr.FileInfo().Mode(),
			owner,
			hdr.Size,
			hdr.ModTime.Format("2006-01-02 15:04"),
			hdr.Name,
			link)
	}
}

func (t *tarArchive) Nested() (bool, error) {
	t.cfg.log().Info("checking if the contents are nested, this can take some time", "file", t.path)

	tr, closeReader, err := t.reader()
	if err != nil {
		return false, err
	}
	defer closeReader()

	rootLevel := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if !strings.Contains(hdr.Name, "/") {
			rootLevel++
			if rootLevel > 1 {
				return false, nil
			}
		}
	}
}

func (t *tarArchive) Extract(dest string) error {
	tr, closeReader, err := t.reader()
	if err != nil {
		return err
	}
	defer closeReader()

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if err := t.extractEntry(tr, hdr, dest); err != nil {
			return err
		}
	}
}

func (t *tarArchive) extractEntry(tr *tar.Reader, hdr *tar.Header, dest string) error {
	if hdr.Typeflag == tar.TypeXGlobalHeader {
		return nil
	}

	target, err := secureJoin(dest, hdr.Name)
	if err != nil {
		return err
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, 0o755)

	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return err
		}
		return out.Close()

	case tar.TypeSymlink:
		return writeSymlink(dest, target, hdr.Linkname)

	case tar.TypeLink:
		// hard link: the link target must itself be inside the destination
		source, err := secureJoin(dest, hdr.Linkname)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		os.Remove(target)
		return os.Link(source, target)

	default:
		// devices, fifos, char specials
		return fmt.Errorf("%w: refusing special file %q", ErrUnsafePath, hdr.Name)
	}
}

func (t *tarArchive) Close() error {
	return t.f.Close()
}
