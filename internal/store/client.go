package store

import (
	"context"
	"errors"
	"fmt"
)

// Result is the outcome of a store request. Failures never escape as
// panics or Go errors; they are carried in Err.
type Result[T any] struct {
	OK    bool
	Value T
	Err   string
}

// Ack is the result of requests that produce no value.
type Ack = Result[struct{}]

// AsError converts a failed result into an error.
func (r Result[T]) AsError() error {
	if r.OK {
		return nil
	}
	if r.Err == "" {
		return errors.New("store request failed")
	}
	return errors.New(r.Err)
}

// Client wraps a Backend with path cleaning, panic containment and
// context checks. It performs no caching.
type Client struct {
	backend Backend
}

func NewClient(backend Backend) *Client {
	return &Client{backend: backend}
}

func run[T any](ctx context.Context, op string, fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[T]{Err: fmt.Sprintf("%s: %v", op, r)}
		}
	}()
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Result[T]{Err: fmt.Sprintf("%s: %v", op, err)}
		}
	}
	v, err := fn()
	if err != nil {
		return Result[T]{Err: fmt.Sprintf("%s: %v", op, err)}
	}
	return Result[T]{OK: true, Value: v}
}

// Read returns the content of the file at p.
func (c *Client) Read(ctx context.Context, p string) Result[string] {
	return run(ctx, "read", func() (string, error) {
		clean, err := Clean(p)
		if err != nil {
			return "", err
		}
		data, err := c.backend.ReadFile(clean)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
}

// Write replaces the content of the file at p.
func (c *Client) Write(ctx context.Context, p, content string) Ack {
	return run(ctx, "write", func() (struct{}, error) {
		clean, err := Clean(p)
		if err != nil {
			return struct{}{}, err
		}
		if clean == "" {
			return struct{}{}, fmt.Errorf("path is empty")
		}
		return struct{}{}, c.backend.WriteFile(clean, []byte(content))
	})
}

// Delete removes a file, or a folder with everything below it.
func (c *Client) Delete(ctx context.Context, p string) Ack {
	return run(ctx, "delete", func() (struct{}, error) {
		clean, err := Clean(p)
		if err != nil {
			return struct{}{}, err
		}
		if clean == "" {
			return struct{}{}, fmt.Errorf("refusing to delete the root folder")
		}
		return struct{}{}, c.backend.Remove(clean)
	})
}

// List returns the entries of the folder at p, folders first.
func (c *Client) List(ctx context.Context, p string) Result[[]Entry] {
	return run(ctx, "list", func() ([]Entry, error) {
		clean, err := Clean(p)
		if err != nil {
			return nil, err
		}
		entries, err := c.backend.ReadDir(clean)
		if err != nil {
			return nil, err
		}
		SortEntries(entries)
		return entries, nil
	})
}

// CreateFolder creates the folder at p and any missing parents.
func (c *Client) CreateFolder(ctx context.Context, p string) Ack {
	return run(ctx, "create folder", func() (struct{}, error) {
		clean, err := Clean(p)
		if err != nil {
			return struct{}{}, err
		}
		if clean == "" {
			return struct{}{}, nil
		}
		return struct{}{}, c.backend.Mkdir(clean)
	})
}

// Move renames or relocates an entry.
func (c *Client) Move(ctx context.Context, from, to string) Ack {
	return run(ctx, "move", func() (struct{}, error) {
		src, err := Clean(from)
		if err != nil {
			return struct{}{}, err
		}
		dst, err := Clean(to)
		if err != nil {
			return struct{}{}, err
		}
		if src == "" || dst == "" {
			return struct{}{}, fmt.Errorf("cannot move the root folder")
		}
		return struct{}{}, c.backend.Rename(src, dst)
	})
}

// Exists reports whether an entry with the given name is present in dir.
// Listing failures count as absent.
func (c *Client) Exists(ctx context.Context, dir, name string) bool {
	res := c.List(ctx, dir)
	if !res.OK {
		return false
	}
	for _, e := range res.Value {
		if e.Name == name {
			return true
		}
	}
	return false
}
