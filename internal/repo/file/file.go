// Package file stores the downtime counter as a base-10 integer in a text file.
package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/repo"
)

var _ repo.CounterStore = (*Store)(nil)

type Store struct {
	fs   afero.Fs
	path string
	log  *zap.Logger
}

// New returns a store for path on the OS filesystem.
func New(path string, log *zap.Logger) *Store {
	return NewWithFs(afero.NewOsFs(), path, log)
}

func NewWithFs(fs afero.Fs, path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{fs: fs, path: path, log: log}
}

// Load reads the counter. A missing file is created holding 0. Content that
// is not a non-negative integer is reported and read as 0, so a damaged
// file never silences the monitor.
func (s *Store) Load(ctx context.Context) (int, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Info("state_file_created", zap.String("path", s.path))
		if err := s.write(0); err != nil {
			return 0, &domain.StorageError{Op: "init", Path: s.path, Err: err}
		}
		return 0, nil
	}
	if err != nil {
		return 0, &domain.StorageError{Op: "load", Path: s.path, Err: err}
	}

	raw := strings.TrimSpace(string(data))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		s.log.Warn("state_file_corrupt",
			zap.String("path", s.path),
			zap.String("content", truncate(raw, 32)),
		)
		return 0, nil
	}
	return n, nil
}

// Save replaces the file contents with value.
func (s *Store) Save(ctx context.Context, value int) error {
	if value < 0 {
		return &domain.StorageError{Op: "save", Path: s.path, Err: errors.New("negative counter")}
	}
	if err := s.write(value); err != nil {
		return &domain.StorageError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// Writable checks that a counter can be written next to the state file
// without touching the file itself.
func (s *Store) Writable() error {
	tmp, err := afero.TempFile(s.fs, filepath.Dir(s.path), "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return &domain.StorageError{Op: "check", Path: s.path, Err: err}
	}
	name := tmp.Name()
	_ = tmp.Close()
	if err := s.fs.Remove(name); err != nil {
		return &domain.StorageError{Op: "check", Path: s.path, Err: err}
	}
	return nil
}

// write goes through a temp file and a rename so a crash mid-write never
// leaves a half-written counter behind.
func (s *Store) write(value int) error {
	tmp, err := afero.TempFile(s.fs, filepath.Dir(s.path), "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(strconv.Itoa(value)); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(name)
		return err
	}
	if err := s.fs.Chmod(name, 0o644); err != nil {
		_ = s.fs.Remove(name)
		return err
	}
	if err := s.fs.Rename(name, s.path); err != nil {
		_ = s.fs.Remove(name)
		return err
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
