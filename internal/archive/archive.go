// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive packages conversion outputs into a single zip file.
package archive

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/zeebo/blake3"
)

// ErrDuplicateMember is returned when two members share an archive name.
var ErrDuplicateMember = errors.New("duplicate archive member")

// Member is one file to place in the archive. Name is the flat name inside
// the zip; Path is the file on disk.
type Member struct {
	Name string
	Path string
}

// Create writes members to a zip at dest. The zip is assembled in a
// temporary file next to dest and renamed into place only when complete, so
// a failed run never leaves a partial archive behind.
func Create(dest string, members []Member) (err error) {
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, m.Name)
		}
		seen[m.Name] = true
	}

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, m := range members {
		if err := addFile(zw, m); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("moving archive into place: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, m Member) error {
	f, err := os.Open(m.Path)
	if err != nil {
		return fmt.Errorf("adding %s: %w", m.Name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("adding %s: %w", m.Name, err)
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("adding %s: %w", m.Name, err)
	}
	hdr.Name = m.Name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding %s: %w", m.Name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("adding %s: %w", m.Name, err)
	}
	return nil
}

// List returns the member names of the zip at path, sorted.
func List(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Extract copies every member of the zip at path into dir and returns the
// extracted file paths, sorted. Member names containing directories are
// rejected.
func Extract(path, dir string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer zr.Close()

	var out []string
	for _, f := range zr.File {
		if f.Name != filepath.Base(f.Name) || f.Name == ".." {
			return nil, fmt.Errorf("archive member %q is not a plain file name", f.Name)
		}
		dst := filepath.Join(dir, f.Name)
		if err := extractFile(f, dst); err != nil {
			return nil, err
		}
		out = append(out, dst)
	}
	sort.Strings(out)
	return out, nil
}

func extractFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("reading %s: %w", f.Name, err)
	}
	defer rc.Close()

	w, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	if _, err := io.Copy(w, rc); err != nil {
		w.Close()
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return w.Close()
}

// Digest returns the hex-encoded BLAKE3-256 digest of the file at path.
// Operators compare it to confirm two deliverables are identical.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
