package main

import (
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	maxAvatarSize    = 1 << 20 // 1 MiB
	maxThumbnailSize = 5 << 20 // 5 MiB
	maxFormMemory    = 8 << 20
)

// uploadFile is one multipart file part: a name, a size and a byte source.
type uploadFile struct {
	name string
	size int64
	src  multipart.File
}

func (u *uploadFile) Close() error { return u.src.Close() }

// formUpload pulls the named file part out of a multipart request.
// Returns (nil, nil) when the request simply has no such part.
func formUpload(r *http.Request, field string) (*uploadFile, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}
	f, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	return &uploadFile{name: header.Filename, size: header.Size, src: f}, nil
}

// uniqueAssetName keeps the original base name and extension and splices a
// random suffix in between: report.pdf -> report_<uuid>.pdf.
func uniqueAssetName(original string) string {
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + uuid.New().String() + ext
}

// fileStore persists uploaded assets under a single directory, addressed by
// generated filename.
type fileStore struct {
	dir string
}

// save writes the upload under a fresh unique name and returns that name.
func (s fileStore) save(up *uploadFile) (string, error) {
	name := uniqueAssetName(up.name)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, up.src); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// remove deletes a stored asset. Best-effort: a failure is logged and
// swallowed so a stale file never fails the request that superseded it.
func (s fileStore) remove(name string) {
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		log.Printf("[upload] remove %s: %v", name, err)
	}
}

// has reports whether the named asset exists on disk.
func (s fileStore) has(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}
