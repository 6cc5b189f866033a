package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// ErrSinRegistro signals that no prior session record exists.
var ErrSinRegistro = errors.New("sin registro de sesión")

// Storage persists the single session record. Implementations must treat a
// missing record as ErrSinRegistro, never as empty bytes.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// FileStorage keeps the session record in one file, created with 0600 since
// it contains the access token.
type FileStorage struct {
	Path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

func (s *FileStorage) Load(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSinRegistro
		}
		return nil, err
	}
	return b, nil
}

func (s *FileStorage) Save(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

func (s *FileStorage) Clear(_ context.Context) error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemStorage is an in-memory Storage for tests and throwaway sessions.
type MemStorage struct {
	data []byte
	set  bool
}

func (s *MemStorage) Load(_ context.Context) ([]byte, error) {
	if !s.set {
		return nil, ErrSinRegistro
	}
	return s.data, nil
}

func (s *MemStorage) Save(_ context.Context, data []byte) error {
	s.data = append([]byte(nil), data...)
	s.set = true
	return nil
}

func (s *MemStorage) Clear(_ context.Context) error {
	s.data = nil
	s.set = false
	return nil
}
