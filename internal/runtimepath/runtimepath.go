// Package runtimepath locates the per-user directory that holds the
// desktop's control socket.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// SocketName is the control socket's file name inside Dir.
const SocketName = "termdesk.sock"

// Dir picks the first usable location: $XDG_RUNTIME_DIR, an existing
// /run/user/<uid>, or a private directory under /tmp that it creates.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := strconv.Itoa(os.Getuid())
	if info, err := os.Stat(filepath.Join("/run/user", uid)); err == nil && info.IsDir() {
		return filepath.Join("/run/user", uid), nil
	}

	fallback := filepath.Join(os.TempDir(), "termdesk-runtime-"+uid)
	if err := os.MkdirAll(fallback, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return fallback, nil
}

// SocketPath returns where the running desktop listens. TERMDESK_SOCKET
// takes precedence.
func SocketPath() (string, error) {
	if p := os.Getenv("TERMDESK_SOCKET"); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SocketName), nil
}
