package overlay

import (
	"github.com/sahilm/fuzzy"
)

// StartEntry is an application listed in the start menu.
type StartEntry struct {
	Name  string
	Label string
	Glyph string
}

// StartMenu lists launchable applications with a fuzzy filter.
type StartMenu struct {
	entries  []StartEntry
	open     bool
	query    string
	filtered []StartEntry
	cursor   int
}

func NewStartMenu(entries []StartEntry) *StartMenu {
	s := &StartMenu{entries: entries}
	s.refilter()
	return s
}

func (s *StartMenu) IsOpen() bool { return s.open }

func (s *StartMenu) Open() {
	s.open = true
	s.query = ""
	s.cursor = 0
	s.refilter()
}

func (s *StartMenu) Close() { s.open = false }

func (s *StartMenu) Toggle() {
	if s.open {
		s.Close()
		return
	}
	s.Open()
}

func (s *StartMenu) Query() string { return s.query }

func (s *StartMenu) Type(text string) {
	s.query += text
	s.refilter()
}

func (s *StartMenu) Backspace() {
	if s.query == "" {
		return
	}
	r := []rune(s.query)
	s.query = string(r[:len(r)-1])
	s.refilter()
}

// Entries returns the entries matching the current query, best first.
func (s *StartMenu) Entries() []StartEntry { return s.filtered }

func (s *StartMenu) Cursor() int { return s.cursor }

func (s *StartMenu) Move(delta int) {
	if len(s.filtered) == 0 {
		return
	}
	s.cursor = (s.cursor + delta + len(s.filtered)) % len(s.filtered)
}

// Selected returns the highlighted entry.
func (s *StartMenu) Selected() (StartEntry, bool) {
	if s.cursor < 0 || s.cursor >= len(s.filtered) {
		return StartEntry{}, false
	}
	return s.filtered[s.cursor], true
}

// At returns the entry in row i of the current listing.
func (s *StartMenu) At(i int) (StartEntry, bool) {
	if i < 0 || i >= len(s.filtered) {
		return StartEntry{}, false
	}
	return s.filtered[i], true
}

func (s *StartMenu) refilter() {
	if s.query == "" {
		s.filtered = append([]StartEntry(nil), s.entries...)
	} else {
		labels := make([]string, len(s.entries))
		for i, e := range s.entries {
			labels[i] = e.Label
		}
		matches := fuzzy.Find(s.query, labels)
		s.filtered = make([]StartEntry, 0, len(matches))
		for _, m := range matches {
			s.filtered = append(s.filtered, s.entries[m.Index])
		}
	}
	if s.cursor >= len(s.filtered) {
		s.cursor = 0
	}
}
