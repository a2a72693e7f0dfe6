package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a stored blob does not exist.
var ErrNotFound = errors.New("stored file not found")

// Stored describes a blob written by Save.
type Stored struct {
	// Name is the generated file name inside the upload directory
	Name string
	Path string
	Size int64
}

// Disk stores attachment blobs in a directory under generated names,
// keeping only the extension of the original file name.
type Disk struct {
	dir string
}

// NewDisk creates the directory if needed.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the upload directory.
func (d *Disk) Dir() string { return d.dir }

// Save copies r into a new blob and returns where it went.
func (d *Disk) Save(originalName string, r io.Reader) (Stored, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	path := filepath.Join(d.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Stored{}, fmt.Errorf("failed to create stored file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return Stored{}, fmt.Errorf("failed to write stored file: %w", err)
	}
	return Stored{Name: name, Path: path, Size: n}, nil
}

// Open returns a reader for a blob previously saved at path.
func (d *Disk) Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Remove deletes a blob; a missing file is not an error.
func (d *Disk) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	return nil
}
