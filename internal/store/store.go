// Package store is the client side of the sandboxed file store the desktop,
// explorer and notes app work against.
package store

import (
	"errors"
	"path"
	"sort"
	"strings"
)

// ErrOutsideSandbox is returned for paths that resolve above the sandbox root.
var ErrOutsideSandbox = errors.New("path escapes the sandbox root")

// ErrIsFolder is returned when a file operation targets a folder.
var ErrIsFolder = errors.New("path is a folder")

// EntryKind distinguishes files from folders in a listing.
type EntryKind string

const (
	KindFile   EntryKind = "file"
	KindFolder EntryKind = "folder"
)

// Entry is one item of a folder listing.
type Entry struct {
	Name string    `json:"name"`
	Kind EntryKind `json:"type"`
}

func (e Entry) IsFolder() bool { return e.Kind == KindFolder }

// Backend is the storage collaborator behind the Client. Paths handed to a
// backend are already cleaned: slash separated, relative, "" for the root.
type Backend interface {
	ReadFile(p string) ([]byte, error)
	// WriteFile creates missing parent folders.
	WriteFile(p string, data []byte) error
	// Remove deletes files and folders recursively.
	Remove(p string) error
	// ReadDir lists a folder. A missing folder yields an empty listing.
	ReadDir(p string) ([]Entry, error)
	// Mkdir creates a folder and its parents; existing folders are not an error.
	Mkdir(p string) error
	// Rename moves an entry, creating the destination parent folder.
	Rename(from, to string) error
}

// Clean normalizes a store path. Backslashes are treated as separators,
// leading slashes are dropped and the root is "".
func Clean(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", nil
	}
	c := path.Clean(p)
	if c == "." {
		return "", nil
	}
	if c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrOutsideSandbox
	}
	return c, nil
}

// Join joins a folder path and an entry name.
func Join(dir, name string) string {
	if dir == "" || dir == "/" {
		return name
	}
	return strings.TrimRight(dir, "/") + "/" + name
}

// Split returns the parent folder and the last element of p.
func Split(p string) (dir, name string) {
	p = strings.Trim(p, "/")
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", p
	}
	return p[:i], p[i+1:]
}

// Parent returns the folder containing p; the root's parent is the root.
func Parent(p string) string {
	dir, _ := Split(p)
	return dir
}

// SortEntries orders folders before files, each case-insensitively by name.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}
