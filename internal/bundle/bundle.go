package bundle

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	kerrors "github.com/selfcheck/datacard/internal/errors"

	"github.com/klauspost/compress/zstd"
)

// maxDecodedSize caps the total size of the files in a bundle. The tar
// stream itself may exceed it by a quarter for headers and padding.
var maxDecodedSize int64 = 256 << 20

// maxWindowMemory bounds the zstd window the decoder will allocate.
const maxWindowMemory = 256 << 20

// ParseLevel converts a configuration value ("fastest", "default",
// "better", "best") into a zstd encoder level.
func ParseLevel(s string) (zstd.EncoderLevel, error) {
	if s == "" {
		return zstd.SpeedDefault, nil
	}
	ok, level := zstd.EncoderLevelFromString(s)
	if !ok {
		return zstd.SpeedDefault, fmt.Errorf("unknown compression level %q", s)
	}
	return level, nil
}

// Pack builds a bundle holding files, stored relative to root. The manifest
// file list is filled in by Pack.
func Pack(root string, files []string, m *Manifest, level zstd.EncoderLevel) ([]byte, error) {
	type source struct {
		path string
		name string
		info os.FileInfo
	}

	m.Files = m.Files[:0]
	sources := make([]source, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s is not a regular file", kerrors.ErrNoFilesFound, f)
		}
		rel, err := filepath.Rel(root, f)
		if err != nil {
			return nil, fmt.Errorf("getting relative path: %w", err)
		}
		name := filepath.ToSlash(rel)
		if name == ManifestName {
			return nil, fmt.Errorf("%w: %s is a reserved name", kerrors.ErrUnsafePath, name)
		}
		if !isSafeName(name) {
			return nil, fmt.Errorf("%w: %s is outside %s", kerrors.ErrUnsafePath, f, root)
		}
		sources = append(sources, source{path: f, name: name, info: info})
		m.Files = append(m.Files, FileEntry{Path: name, Size: info.Size()})
	}

	manifest, err := m.marshal()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("creating zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	if err := tw.WriteHeader(&tar.Header{
		Name:    ManifestName,
		Mode:    0600,
		Size:    int64(len(manifest)),
		ModTime: m.CreatedAt,
	}); err != nil {
		return nil, fmt.Errorf("writing manifest header: %w", err)
	}
	if _, err := tw.Write(manifest); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	for _, s := range sources {
		if err := addFileToTar(tw, s.path, s.name, s.info); err != nil {
			return nil, fmt.Errorf("adding %s to bundle: %w", s.path, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar writer: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing zstd writer: %w", err)
	}
	return buf.Bytes(), nil
}

// addFileToTar adds a single file under name.
func addFileToTar(tw *tar.Writer, filePath, name string, info os.FileInfo) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("creating tar header: %w", err)
	}
	header.Name = name
	// Owner names leak local account details into the card.
	header.Uname, header.Gname = "", ""
	header.Uid, header.Gid = 0, 0

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("writing tar header: %w", err)
	}
	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("writing file contents: %w", err)
	}
	return nil
}

// walk calls fn for every regular file entry after the manifest.
func walk(data []byte, fn func(h *tar.Header, r io.Reader) error) (*Manifest, error) {
	zr, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(maxWindowMemory))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidBundle, err)
	}
	defer zr.Close()

	tr := tar.NewReader(io.LimitReader(zr, maxDecodedSize+maxDecodedSize/4))
	first, err := tr.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidBundle, err)
	}
	if first.Name != ManifestName || first.Size > 1<<20 {
		return nil, fmt.Errorf("%w: missing %s", kerrors.ErrInvalidBundle, ManifestName)
	}
	raw, err := io.ReadAll(tr)
	if err != nil {
		return nil, fmt.Errorf("%w: reading manifest: %v", kerrors.ErrInvalidBundle, err)
	}
	m, err := parseManifest(raw)
	if err != nil {
		return nil, err
	}

	var total int64
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidBundle, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if !isSafeName(header.Name) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrUnsafePath, header.Name)
		}
		if header.Size < 0 || header.Size > maxDecodedSize-total {
			return nil, fmt.Errorf("%w: %s would grow the bundle past %d bytes",
				kerrors.ErrInvalidBundle, header.Name, maxDecodedSize)
		}
		total += header.Size
		if err := fn(header, tr); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// List returns the manifest and the names of the files stored in data.
func List(data []byte) (*Manifest, []string, error) {
	var names []string
	m, err := walk(data, func(h *tar.Header, _ io.Reader) error {
		names = append(names, h.Name)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return m, names, nil
}

// Unpack extracts the files in data under dest and returns the written
// paths. Existing files cause ErrFileExists unless overwrite is set.
func Unpack(data []byte, dest string, overwrite bool) (*Manifest, []string, error) {
	_, names, err := List(data)
	if err != nil {
		return nil, nil, err
	}
	if !overwrite {
		for _, name := range names {
			target := filepath.Join(dest, filepath.FromSlash(name))
			if _, err := os.Stat(target); err == nil {
				return nil, nil, fmt.Errorf("%w: %s", kerrors.ErrFileExists, target)
			}
		}
	}

	var written []string
	m, err := walk(data, func(h *tar.Header, r io.Reader) error {
		target := filepath.Join(dest, filepath.FromSlash(h.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
			return fmt.Errorf("creating directory for %s: %w", target, err)
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("creating %s: %w", target, err)
		}
		if _, err := io.CopyN(f, r, h.Size); err != nil {
			f.Close()
			return fmt.Errorf("%w: writing %s: %v", kerrors.ErrInvalidBundle, target, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", target, err)
		}
		written = append(written, target)
		return nil
	})
	if err != nil {
		return nil, written, err
	}
	return m, written, nil
}

// isSafeName reports whether a slash-separated entry name stays inside the
// directory it is extracted to.
func isSafeName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return false
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(clean))
}
