package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// magicZip is the ZIP local-file-header signature.
var magicZip = []byte{0x50, 0x4b, 0x03, 0x04}

type zipArchive struct {
	path string
	rc   *zip.ReadCloser
	cfg  *Config
}

func openZip(path string, cfg *Config) (*zipArchive, error) {
	if err := checkMagic(path, 0, magicZip); err != nil {
		return nil, err
	}
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &zipArchive{path: path, rc: rc, cfg: cfg}, nil
}

func (z *zipArchive) List(w io.Writer) error {
	fmt.Fprintf(w, "%-44s %19s %12s %12s\n", "Name", "Modified", "Compressed", "Size")
	for _, f := range z.rc.File {
		fmt.Fprintf(w, "%-44s %19s %12d %12d\n",
			f.Name,
			f.Modified.Format("2006-01-02 15:04:05"),
			f.CompressedSize64,
			f.UncompressedSize64)
	}
	return nil
}

func (z *zipArchive) Nested() (bool, error) {
	z.cfg.log().Info("checking if the contents are nested, this can take some time", "file", z.path)

	rootLevel := 0
	for _, f := range z.rc.File {
		if !strings.Contains(f.Name, "/") {
			rootLevel++
			if rootLevel > 1 {
				return false, nil
			}
		}
	}
	return true, nil
}

func (z *zipArchive) Extract(dest string) error {
	for _, f := range z.rc.File {
		if err := z.extractEntry(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func (z *zipArchive) extractEntry(f *zip.File, dest string) error {
	target, err := secureJoin(dest, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if f.Mode()&os.ModeSymlink != 0 {
		// the entry body holds the link target
		rc, err := f.Open()
		if err != nil {
			return err
		}
		linkname, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return err
		}
		return writeSymlink(dest, target, string(linkname))
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	mode := f.Mode().Perm()
	if mode == 0 {
		// some zip producers store no permission bits at all
		mode = 0o644
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		rc.Close()
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		rc.Close()
		out.Close()
		return err
	}

	rc.Close()
	return out.Close()
}

func (z *zipArchive) Close() error {
	return z.rc.Close()
}
