package store

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

// MemBackend keeps the whole store in memory. It backs ephemeral sessions
// and tests.
type MemBackend struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]struct{}
}

func NewMemBackend() *MemBackend {
	return &MemBackend{
		files: make(map[string][]byte),
		dirs:  make(map[string]struct{}),
	}
}

func (m *MemBackend) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[p]; ok {
		return append([]byte(nil), data...), nil
	}
	if m.isDir(p) {
		return nil, fmt.Errorf("%s: %w", p, ErrIsFolder)
	}
	return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
}

func (m *MemBackend) WriteFile(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == "" || m.isDir(p) {
		return fmt.Errorf("%s: %w", p, ErrIsFolder)
	}
	m.mkdirAll(Parent(p))
	m.files[p] = append([]byte(nil), data...)
	return nil
}

func (m *MemBackend) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists(p) {
		return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
	}
	delete(m.files, p)
	delete(m.dirs, p)
	prefix := p + "/"
	for k := range m.files {
		if strings.HasPrefix(k, prefix) {
			delete(m.files, k)
		}
	}
	for k := range m.dirs {
		if strings.HasPrefix(k, prefix) {
			delete(m.dirs, k)
		}
	}
	return nil
}

func (m *MemBackend) ReadDir(p string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[p]; ok {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fmt.Errorf("not a folder")}
	}
	out := []Entry{}
	for k := range m.dirs {
		if name, ok := childName(p, k); ok {
			out = append(out, Entry{Name: name, Kind: KindFolder})
		}
	}
	for k := range m.files {
		if name, ok := childName(p, k); ok {
			out = append(out, Entry{Name: name, Kind: KindFile})
		}
	}
	return out, nil
}

func (m *MemBackend) Mkdir(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[p]; ok {
		return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
	}
	m.mkdirAll(p)
	return nil
}

func (m *MemBackend) Rename(from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists(from) || from == "" {
		return &fs.PathError{Op: "rename", Path: from, Err: fs.ErrNotExist}
	}
	if to == from {
		return nil
	}
	if strings.HasPrefix(to, from+"/") {
		return &fs.PathError{Op: "rename", Path: to, Err: fmt.Errorf("cannot move a folder into itself")}
	}
	m.mkdirAll(Parent(to))

	if data, ok := m.files[from]; ok {
		delete(m.files, from)
		m.files[to] = data
		return nil
	}

	prefix := from + "/"
	delete(m.dirs, from)
	m.dirs[to] = struct{}{}
	for k, v := range m.files {
		if strings.HasPrefix(k, prefix) {
			delete(m.files, k)
			m.files[to+"/"+strings.TrimPrefix(k, prefix)] = v
		}
	}
	for k := range m.dirs {
		if strings.HasPrefix(k, prefix) {
			delete(m.dirs, k)
			m.dirs[to+"/"+strings.TrimPrefix(k, prefix)] = struct{}{}
		}
	}
	return nil
}

func (m *MemBackend) isDir(p string) bool {
	if p == "" {
		return true
	}
	_, ok := m.dirs[p]
	return ok
}

func (m *MemBackend) exists(p string) bool {
	if _, ok := m.files[p]; ok {
		return true
	}
	return p != "" && m.isDir(p)
}

func (m *MemBackend) mkdirAll(p string) {
	for p != "" {
		m.dirs[p] = struct{}{}
		p = Parent(p)
	}
}

// childName reports whether key is a direct child of dir.
func childName(dir, key string) (string, bool) {
	rest := key
	if dir != "" {
		if !strings.HasPrefix(key, dir+"/") {
			return "", false
		}
		rest = key[len(dir)+1:]
	}
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
