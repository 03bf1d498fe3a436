package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrFileTooLarge возвращается, когда файл превышает допустимый размер
	ErrFileTooLarge = errors.New("filestore: file too large")

	// ErrFileNotFound возвращается, когда файла нет в хранилище
	ErrFileNotFound = errors.New("filestore: file not found")

	// ErrInvalidKey возвращается для ключа, выходящего за пределы корня хранилища
	ErrInvalidKey = errors.New("filestore: invalid key")

	// ErrStorage возвращается при ошибке файловой системы
	ErrStorage = errors.New("filestore: storage error")
)

// LocalStore хранит файлы в каталоге на диске, ключ - относительный путь
type LocalStore struct {
	root string
}

// NewLocalStore создает хранилище и корневой каталог
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root: %v", ErrStorage, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create root: %v", ErrStorage, err)
	}
	return &LocalStore{root: abs}, nil
}

// Save записывает не более maxBytes байт из r под ключом key
// При превышении лимита частично записанный файл удаляется
func (s *LocalStore) Save(key string, r io.Reader, maxBytes int64) (int64, error) {
	path, err := s.path(key)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return 0, fmt.Errorf("%w: create dir: %v", ErrStorage, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return 0, fmt.Errorf("%w: create file: %v", ErrStorage, err)
	}

	written, copyErr := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return 0, fmt.Errorf("%w: write file: %v", ErrStorage, copyErr)
	case written > maxBytes:
		_ = os.Remove(path)
		return 0, ErrFileTooLarge
	case closeErr != nil:
		_ = os.Remove(path)
		return 0, fmt.Errorf("%w: close file: %v", ErrStorage, closeErr)
	}

	return written, nil
}

// Open открывает файл на чтение
func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open file: %v", ErrStorage, err)
	}
	return f, nil
}

// Remove удаляет файл, отсутствие файла ошибкой не считается
func (s *LocalStore) Remove(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove file: %v", ErrStorage, err)
	}
	return nil
}

func (s *LocalStore) path(key string) (string, error) {
	if key == "" || filepath.IsAbs(key) {
		return "", ErrInvalidKey
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return path, nil
}
