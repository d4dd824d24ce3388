package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound    = errors.New("stored file not found")
	ErrInvalidPath = errors.New("invalid storage path")
	ErrTooLarge    = errors.New("file exceeds size limit")
)

// Local keeps files under a root directory. Paths handed out are relative
// to that root so the directory can move between deployments.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{root: abs}, nil
}

type Saved struct {
	Path   string
	Size   int64
	SHA256 string
}

// Save streams r to rel, hashing on the way. It fails with ErrTooLarge
// once more than maxBytes have been read and removes the partial file.
func (l *Local) Save(rel string, r io.Reader, maxBytes int64) (Saved, error) {
	full, err := l.resolve(rel)
	if err != nil {
		return Saved{}, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Saved{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return Saved{}, err
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(io.MultiWriter(tmp, h), src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Saved{}, err
	}
	if maxBytes > 0 && n > maxBytes {
		return Saved{}, ErrTooLarge
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return Saved{}, err
	}

	return Saved{Path: filepath.ToSlash(rel), Size: n, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}

func (l *Local) Open(rel string) (*os.File, error) {
	full, err := l.resolve(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (l *Local) Read(rel string) ([]byte, error) {
	f, err := l.Open(rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (l *Local) Delete(rel string) error {
	full, err := l.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) resolve(rel string) (string, error) {
	rel = filepath.Clean(filepath.FromSlash(strings.TrimSpace(rel)))
	if rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return filepath.Join(l.root, rel), nil
}
