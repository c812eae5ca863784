package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1broseidon/termdesk/internal/icons"
	"github.com/1broseidon/termdesk/internal/windows"
)

const (
	DefaultTheme          = "light"
	DefaultWallpaper      = "wallpaper-1"
	DefaultWallpaperColor = "#667eea"
	// CustomWallpaper selects the solid WallpaperColor background.
	CustomWallpaper = "custom"
)

// Wallpapers are the preset backgrounds cycled by Change Wallpaper.
var Wallpapers = []string{"wallpaper-1", "wallpaper-2", "wallpaper-3", "wallpaper-4"}

// NextWallpaper returns the preset after current, wrapping around. Unknown
// values and the custom colour restart the cycle.
func NextWallpaper(current string) string {
	for i, w := range Wallpapers {
		if w == current {
			return Wallpapers[(i+1)%len(Wallpapers)]
		}
	}
	return Wallpapers[0]
}

// Snapshot is everything persisted about the desktop between runs.
type Snapshot struct {
	Icons          []icons.Record
	Windows        []windows.Summary
	Theme          string
	Wallpaper      string
	WallpaperColor string
}

// Restorable returns the windows that should reopen at startup.
func (s Snapshot) Restorable() []windows.Summary {
	var out []windows.Summary
	for _, w := range s.Windows {
		if w.IsOpen && !w.IsMinimized {
			out = append(out, w)
		}
	}
	return out
}

// Load reads a snapshot, filling in the stock appearance for absent keys.
func Load(ctx context.Context, kv KV) (Snapshot, error) {
	return LoadWithDefaults(ctx, kv, Snapshot{Theme: DefaultTheme, Wallpaper: DefaultWallpaper, WallpaperColor: DefaultWallpaperColor})
}

// LoadWithDefaults reads a snapshot, taking the appearance from defaults
// for absent keys. Values that fail to decode are dropped and reported in
// the returned error alongside a usable snapshot; store failures abort the
// load.
func LoadWithDefaults(ctx context.Context, kv KV, defaults Snapshot) (Snapshot, error) {
	s := Snapshot{Theme: defaults.Theme, Wallpaper: defaults.Wallpaper, WallpaperColor: defaults.WallpaperColor}

	for key, dst := range map[string]*string{
		KeyTheme:          &s.Theme,
		KeyWallpaper:      &s.Wallpaper,
		KeyWallpaperColor: &s.WallpaperColor,
	} {
		v, ok, err := kv.Get(ctx, key)
		if err != nil {
			return Snapshot{}, err
		}
		if ok && v != "" {
			*dst = v
		}
	}

	var bad []error
	if raw, ok, err := kv.Get(ctx, KeyIconPositions); err != nil {
		return Snapshot{}, err
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &s.Icons); err != nil {
			s.Icons = nil
			bad = append(bad, fmt.Errorf("%s: %w", KeyIconPositions, err))
		}
	}
	if raw, ok, err := kv.Get(ctx, KeyWindowStates); err != nil {
		return Snapshot{}, err
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &s.Windows); err != nil {
			s.Windows = nil
			bad = append(bad, fmt.Errorf("%s: %w", KeyWindowStates, err))
		}
	}
	return s, errors.Join(bad...)
}

// SaveIcons persists icon positions.
func SaveIcons(ctx context.Context, kv KV, recs []icons.Record) error {
	return setJSON(ctx, kv, KeyIconPositions, recs)
}

// SaveWindows persists window summaries.
func SaveWindows(ctx context.Context, kv KV, sums []windows.Summary) error {
	return setJSON(ctx, kv, KeyWindowStates, sums)
}

// SaveAppearance persists theme and wallpaper.
func SaveAppearance(ctx context.Context, kv KV, theme, wallpaper, color string) error {
	for _, kvp := range [][2]string{
		{KeyTheme, theme},
		{KeyWallpaper, wallpaper},
		{KeyWallpaperColor, color},
	} {
		if err := kv.Set(ctx, kvp[0], kvp[1]); err != nil {
			return err
		}
	}
	return nil
}

// Save writes a whole snapshot.
func Save(ctx context.Context, kv KV, s Snapshot) error {
	if err := SaveAppearance(ctx, kv, s.Theme, s.Wallpaper, s.WallpaperColor); err != nil {
		return err
	}
	if err := SaveIcons(ctx, kv, s.Icons); err != nil {
		return err
	}
	return SaveWindows(ctx, kv, s.Windows)
}

func setJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("layout: encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}
