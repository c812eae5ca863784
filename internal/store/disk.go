package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiskBackend stores entries under a root directory on the host filesystem.
type DiskBackend struct {
	root string
}

// NewDiskBackend returns a backend rooted at root. The directory is created
// lazily on the first write.
func NewDiskBackend(root string) *DiskBackend {
	return &DiskBackend{root: filepath.Clean(root)}
}

// Root returns the host directory backing the store.
func (d *DiskBackend) Root() string { return d.root }

func (d *DiskBackend) fullPath(p string) string {
	if p == "" {
		return d.root
	}
	return filepath.Join(d.root, filepath.FromSlash(p))
}

func (d *DiskBackend) ReadFile(p string) ([]byte, error) {
	full := d.fullPath(p)
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", p, ErrIsFolder)
	}
	return os.ReadFile(full)
}

func (d *DiskBackend) WriteFile(p string, data []byte) error {
	full := d.fullPath(p)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return os.WriteFile(full, data, 0644)
}

func (d *DiskBackend) Remove(p string) error {
	full := d.fullPath(p)
	if _, err := os.Lstat(full); err != nil {
		return err
	}
	return os.RemoveAll(full)
}

func (d *DiskBackend) ReadDir(p string) ([]Entry, error) {
	entries, err := os.ReadDir(d.fullPath(p))
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, ent := range entries {
		kind := KindFile
		if ent.IsDir() {
			kind = KindFolder
		}
		out = append(out, Entry{Name: ent.Name(), Kind: kind})
	}
	return out, nil
}

func (d *DiskBackend) Mkdir(p string) error {
	return os.MkdirAll(d.fullPath(p), 0755)
}

func (d *DiskBackend) Rename(from, to string) error {
	src := d.fullPath(from)
	if _, err := os.Lstat(src); err != nil {
		return err
	}
	dst := d.fullPath(to)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return os.Rename(src, dst)
}
