package store

import (
	"fmt"
	"strings"
)

// Names returns the set of entry names in a listing.
func Names(entries []Entry) map[string]bool {
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		out[e.Name] = true
	}
	return out
}

// UniqueName returns base+ext, or "base (n)"+ext with the smallest n >= 2
// that is not taken.
func UniqueName(taken map[string]bool, base, ext string) string {
	candidate := base + ext
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
	}
	return candidate
}

// SplitExt splits a file name at its last dot. Names whose only dot is
// the first character have no extension.
func SplitExt(name string) (base, ext string) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name, ""
	}
	return name[:dot], name[dot:]
}

// ValidateName rejects names that cannot be used for a single entry.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("name is empty")
	case name == "." || name == "..":
		return fmt.Errorf("%q is not a valid name", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("name %q contains a path separator", name)
	}
	return nil
}
