package format

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		filename string
		want     Format
		wantStem string
	}{
		{"photos.zip", Zip, "photos"},
		{"logs.tar.gz", TarGz, "logs"},
		{"data.tar.xz", TarXz, "data"},
		{"release-v1.2.3.tar.gz", TarGz, "release-v1.2.3"},
		{"a.b.c.zip", Zip, "a.b.c"},
		{"weird.tar.gz.zip", Zip, "weird.tar.gz"},
	}

	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			f, stem, err := Resolve(tc.filename)
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tc.filename, err)
			}
			if f != tc.want {
				t.Errorf("Resolve(%q) format = %v, want %v", tc.filename, f, tc.want)
			}
			if stem != tc.wantStem {
				t.Errorf("Resolve(%q) stem = %q, want %q", tc.filename, stem, tc.wantStem)
			}
			if stem+f.Suffix() != tc.filename {
				t.Errorf("stem %q + suffix %q does not reassemble %q", stem, f.Suffix(), tc.filename)
			}
		})
	}
}

func TestResolveUnsupported(t *testing.T) {
	cases := []string{
		"",
		"noextension",
		"data.rar",
		"archive.tar", // prefix of a supported suffix is not enough
		"file.gz",
		"file.xz",
		"file.tgz",
		"photos.ZIP", // matching is case-sensitive
		"logs.tar.GZ",
	}

	for _, filename := range cases {
		t.Run("unsupported_"+filename, func(t *testing.T) {
			_, _, err := Resolve(filename)
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("Resolve(%q) = %v, want ErrUnsupported", filename, err)
			}
		})
	}
}

func TestResolveErrorQuotesSuffixOnly(t *testing.T) {
	_, _, err := Resolve("data.rar")
	if err == nil || !strings.Contains(err.Error(), `".rar"`) {
		t.Errorf("error %v does not quote the offending suffix \".rar\"", err)
	}

	// a dotless filename has no suffix; the whole name must not be
	// presented as one
	_, _, err = Resolve("noextension")
	if err == nil {
		t.Fatal("Resolve(\"noextension\") succeeded")
	}
	if strings.Contains(err.Error(), "noextension") {
		t.Errorf("error %v quotes the filename as if it were a suffix", err)
	}
}

func TestCompression(t *testing.T) {
	if got := TarGz.Compression(); got != "gz" {
		t.Errorf("TarGz.Compression() = %q, want \"gz\"", got)
	}
	if got := TarXz.Compression(); got != "xz" {
		t.Errorf("TarXz.Compression() = %q, want \"xz\"", got)
	}
	if got := Zip.Compression(); got != "" {
		t.Errorf("Zip.Compression() = %q, want empty", got)
	}
}
