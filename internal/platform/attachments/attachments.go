// Package attachments stores patient report and prescription files outside
// the appointment table. Records reference stored files by name; the store
// owns the bytes. A filesystem backend serves production and an in-memory
// backend serves tests.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotFound         = errors.New("attachment not found")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrInvalidExtension = errors.New("file extension is not allowed")
	ErrMissingFileName  = errors.New("file name is required")
)

// MaxFileSize is the maximum allowed attachment size in bytes (20 MB).
const MaxFileSize = 20 * 1024 * 1024

// AllowedExtensions lists the file extensions the front desk may upload.
var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".txt":  true,
	".doc":  true,
	".docx": true,
}

// ValidateFileName rejects empty names, path traversal and disallowed
// extensions.
func ValidateFileName(name string) error {
	if name == "" {
		return ErrMissingFileName
	}
	if filepath.Base(name) != name || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, name)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	return nil
}

// Store is the contract for attachment backends.
type Store interface {
	// Put stores content under name, overwriting any existing file.
	Put(ctx context.Context, name string, content io.Reader) error
	// Open returns a reader over the named attachment.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes the named attachment. Deleting a missing file is an
	// error.
	Delete(ctx context.Context, name string) error
	// List returns all stored names in lexical order.
	List(ctx context.Context) ([]string, error)
}

// FSStore keeps attachments as plain files under a root directory.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment directory %s: %w", root, err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) path(name string) string {
	return filepath.Join(s.root, filepath.Base(name))
}

func (s *FSStore) Put(ctx context.Context, name string, content io.Reader) error {
	if err := ValidateFileName(name); err != nil {
		return err
	}
	tmp := s.path(name) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(content, MaxFileSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write attachment: %w", err)
	}
	if n > MaxFileSize {
		os.Remove(tmp)
		return ErrFileTooLarge
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store attachment: %w", err)
	}
	return nil
}

func (s *FSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return f, nil
}

func (s *FSStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (s *FSStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// MemStore is an in-memory Store for tests and development.
type MemStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

func (s *MemStore) Put(ctx context.Context, name string, content io.Reader) error {
	if err := ValidateFileName(name); err != nil {
		return err
	}
	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return ErrFileTooLarge
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
	return nil
}

func (s *MemStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[name]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (s *MemStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; !ok {
		return ErrNotFound
	}
	delete(s.files, name)
	return nil
}

func (s *MemStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
