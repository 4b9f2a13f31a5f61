// Package diskstore keeps uploaded files in a local directory and refers to
// them by bare file name.
package diskstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidName is returned for names that are empty or would escape the
// storage directory.
var ErrInvalidName = errors.New("invalid file name")

// Store writes files below a single directory.
type Store struct {
	dir    string
	logger zerolog.Logger
}

// New prepares dir for writing and returns a store rooted there.
func New(dir string, logger zerolog.Logger) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("upload directory must be provided")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Store{
		dir:    dir,
		logger: logger.With().Str("component", "diskstore").Logger(),
	}, nil
}

// Save writes reader to name, replacing any existing file of that name.
func (s *Store) Save(ctx context.Context, name string, reader io.Reader) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}

	s.logger.Debug().Str("file", name).Msg("file stored")
	return nil
}

// Delete removes name. A missing file yields an error wrapping fs.ErrNotExist.
func (s *Store) Delete(ctx context.Context, name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}

	s.logger.Debug().Str("file", name).Msg("file deleted")
	return nil
}

// Rename moves from to to, replacing any existing file named to.
func (s *Store) Rename(ctx context.Context, from, to string) error {
	source, err := s.Path(from)
	if err != nil {
		return err
	}
	target, err := s.Path(to)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Rename(source, target); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", from, to, err)
	}

	s.logger.Debug().Str("from", from).Str("file", to).Msg("file renamed")
	return nil
}

// Path resolves name inside the storage directory.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return filepath.Join(s.dir, name), nil
}
