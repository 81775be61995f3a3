// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FSStore is a filesystem-backed Store: each blob is a file named by a
// fresh uuid under dir.
type FSStore struct {
	dir string
}

// NewFSStore creates an FSStore rooted at dir, creating it if necessary.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create store dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) path(id string) string {
	return filepath.Join(s.dir, id)
}

// Store writes r to a fresh file under dir and returns its id.
func (s *FSStore) Store(name string, r io.Reader) (string, error) {
	id := uuid.NewString()
	if ext := filepath.Ext(name); ext != "" {
		id += ext
	}
	f, err := os.Create(s.path(id))
	if err != nil {
		return "", fmt.Errorf("blob: create: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("blob: write: %w", err)
	}
	return id, nil
}

// Open returns a read handle on the blob identified by id.
func (s *FSStore) Open(id string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob: open: %w", err)
	}
	return f, nil
}

// AsTempfile copies the blob's bytes into a fresh temp file with suffix
// and returns its path plus a cleanup func that removes it.
func (s *FSStore) AsTempfile(id, suffix string) (string, func(), error) {
	src, err := s.Open(id)
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "blob-*"+suffix)
	if err != nil {
		return "", nil, fmt.Errorf("blob: create tempfile: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("blob: stage tempfile: %w", err)
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("blob: close tempfile: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}
