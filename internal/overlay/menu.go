package overlay

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/geometry"
)

// Desktop context menu actions.
const (
	ActionNewNote   = "new-note"
	ActionNewFolder = "new-folder"
	ActionRefresh   = "refresh"
	ActionWallpaper = "wallpaper"
	ActionDelete    = "delete"
	ActionRename    = "rename"
)

// SubmenuHideDelay is how long a submenu stays up after the pointer leaves
// it and its parent item.
const SubmenuHideDelay = 150 * time.Millisecond

// MenuItem is one row of a context menu.
type MenuItem struct {
	Label     string
	Action    string // empty for parent items and dividers
	IsDivider bool
	Disabled  bool
	Submenu   []MenuItem
}

// IsParent returns true if this item has a submenu.
func (m MenuItem) IsParent() bool {
	return len(m.Submenu) > 0
}

func (m MenuItem) selectable() bool {
	return !m.IsDivider && !m.Disabled && (m.Action != "" || m.IsParent())
}

// DesktopItems builds the desktop context menu for a selection of the given
// size. Delete needs a selection, Rename exactly one entry; otherwise they
// are shown disabled.
func DesktopItems(selected int) []MenuItem {
	return []MenuItem{
		{Label: "New", Submenu: []MenuItem{
			{Label: "Text Document", Action: ActionNewNote},
			{Label: "Folder", Action: ActionNewFolder},
		}},
		{Label: "Refresh", Action: ActionRefresh},
		{Label: "Change Wallpaper", Action: ActionWallpaper},
		{IsDivider: true},
		{Label: fmt.Sprintf("Delete Selected (%d)", selected), Action: ActionDelete, Disabled: selected < 1},
		{Label: "Rename", Action: ActionRename, Disabled: selected != 1},
	}
}

// MenuMetrics sizes context menu rows in desktop units.
type MenuMetrics struct {
	Width      int
	ItemHeight int
}

func DefaultMenuMetrics() MenuMetrics {
	return MenuMetrics{Width: 200, ItemHeight: 20}
}

// SubmenuHideMsg asks the menu to close its submenu if no newer hover has
// happened since the timer was armed.
type SubmenuHideMsg struct{ Gen int }

// hideSubmenuAfter arms the delayed submenu close.
func hideSubmenuAfter(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return SubmenuHideMsg{Gen: gen}
	})
}

// ContextMenu is a popup menu with at most one open submenu.
type ContextMenu struct {
	metrics   MenuMetrics
	bounds    geometry.Size
	hideDelay time.Duration

	open  bool
	items []MenuItem
	rect  geometry.Rect
	hover int

	sub      int // index of the parent whose submenu is shown, -1 if none
	subRect  geometry.Rect
	subHover int
	inSub    bool // keyboard focus is in the submenu

	gen         int
	hidePending bool
}

func NewContextMenu(metrics MenuMetrics) *ContextMenu {
	if metrics.Width <= 0 || metrics.ItemHeight <= 0 {
		metrics = DefaultMenuMetrics()
	}
	return &ContextMenu{metrics: metrics, hideDelay: SubmenuHideDelay, sub: -1, hover: -1, subHover: -1}
}

// SetHideDelay changes how long a submenu outlives the pointer leaving it.
func (c *ContextMenu) SetHideDelay(d time.Duration) {
	if d > 0 {
		c.hideDelay = d
	}
}

// Open shows the menu at p, shifted so it stays inside bounds.
func (c *ContextMenu) Open(p geometry.Point, items []MenuItem, bounds geometry.Size) {
	c.open = true
	c.items = items
	c.bounds = bounds
	c.hover, c.sub, c.subHover = -1, -1, -1
	c.inSub = false
	c.hidePending = false
	c.gen++
	h := len(items) * c.metrics.ItemHeight
	c.rect = geometry.Rect{
		X:      geometry.Clamp(p.X, 0, bounds.Width-c.metrics.Width),
		Y:      geometry.Clamp(p.Y, 0, bounds.Height-h),
		Width:  c.metrics.Width,
		Height: h,
	}
}

func (c *ContextMenu) Close() {
	c.open = false
	c.items = nil
	c.sub, c.hover, c.subHover = -1, -1, -1
	c.inSub = false
	c.hidePending = false
	c.gen++
}

func (c *ContextMenu) IsOpen() bool        { return c.open }
func (c *ContextMenu) Items() []MenuItem   { return c.items }
func (c *ContextMenu) Rect() geometry.Rect { return c.rect }
func (c *ContextMenu) Hovered() int        { return c.hover }

// Submenu returns the open submenu, its rect and the hovered row.
func (c *ContextMenu) Submenu() ([]MenuItem, geometry.Rect, int, bool) {
	if !c.open || c.sub < 0 {
		return nil, geometry.Rect{}, -1, false
	}
	return c.items[c.sub].Submenu, c.subRect, c.subHover, true
}

func (c *ContextMenu) rowAt(r geometry.Rect, n int, p geometry.Point) int {
	if !within(r, p) {
		return -1
	}
	row := (p.Y - r.Y) / c.metrics.ItemHeight
	if row >= n {
		return -1
	}
	return row
}

func (c *ContextMenu) openSub(i int) {
	c.hidePending = false
	c.gen++
	if c.sub == i {
		return
	}
	c.sub = i
	c.subHover = -1
	n := len(c.items[i].Submenu)
	h := n * c.metrics.ItemHeight
	x := c.rect.Right()
	if x+c.metrics.Width > c.bounds.Width {
		x = c.rect.X - c.metrics.Width
	}
	y := c.rect.Y + i*c.metrics.ItemHeight
	c.subRect = geometry.Rect{
		X:      max(0, x),
		Y:      geometry.Clamp(y, 0, c.bounds.Height-h),
		Width:  c.metrics.Width,
		Height: h,
	}
}

// Hover tracks the pointer. Moving onto a parent item opens its submenu;
// leaving both the submenu and its parent returns a command that closes the
// submenu after the hide delay unless the pointer comes back.
func (c *ContextMenu) Hover(p geometry.Point) tea.Cmd {
	if !c.open {
		return nil
	}
	if c.sub >= 0 {
		if row := c.rowAt(c.subRect, len(c.items[c.sub].Submenu), p); row >= 0 {
			c.subHover = row
			c.hover = c.sub
			c.hidePending = false
			c.gen++
			return nil
		}
		c.subHover = -1
	}
	row := c.rowAt(c.rect, len(c.items), p)
	c.hover = row
	if row >= 0 && c.items[row].IsParent() && !c.items[row].Disabled {
		c.openSub(row)
		return nil
	}
	if c.sub >= 0 && !c.hidePending {
		c.hidePending = true
		c.gen++
		return hideSubmenuAfter(c.hideDelay, c.gen)
	}
	return nil
}

// HideSubmenu closes the submenu if gen is still the latest hover
// generation.
func (c *ContextMenu) HideSubmenu(gen int) bool {
	if !c.open || !c.hidePending || gen != c.gen {
		return false
	}
	c.sub, c.subHover = -1, -1
	c.inSub = false
	c.hidePending = false
	return true
}

// Contains reports whether p is over the menu or its submenu.
func (c *ContextMenu) Contains(p geometry.Point) bool {
	if !c.open {
		return false
	}
	if c.rowAt(c.rect, len(c.items), p) >= 0 {
		return true
	}
	return c.sub >= 0 && c.rowAt(c.subRect, len(c.items[c.sub].Submenu), p) >= 0
}

// Click activates the item under p. It returns the chosen action, which is
// empty when the click opened a submenu, hit a divider or disabled item, or
// missed the menu.
// A miss closes the menu.
func (c *ContextMenu) Click(p geometry.Point) string {
	if !c.open {
		return ""
	}
	if c.sub >= 0 {
		subItems := c.items[c.sub].Submenu
		if row := c.rowAt(c.subRect, len(subItems), p); row >= 0 {
			return c.choose(subItems[row])
		}
	}
	row := c.rowAt(c.rect, len(c.items), p)
	if row < 0 {
		c.Close()
		return ""
	}
	item := c.items[row]
	if item.IsParent() && !item.Disabled {
		c.openSub(row)
		return ""
	}
	return c.choose(item)
}

func (c *ContextMenu) choose(item MenuItem) string {
	if !item.selectable() || item.IsParent() {
		return ""
	}
	c.Close()
	return item.Action
}

// Move shifts keyboard highlight by delta, skipping dividers and disabled
// items.
func (c *ContextMenu) Move(delta int) {
	if !c.open {
		return
	}
	items, cur := c.items, &c.hover
	if c.inSub && c.sub >= 0 {
		items, cur = c.items[c.sub].Submenu, &c.subHover
	}
	if len(items) == 0 {
		return
	}
	i := *cur
	if i < 0 && delta < 0 {
		i = 0
	}
	for range items {
		i = (i + delta + len(items)) % len(items)
		if items[i].selectable() {
			*cur = i
			return
		}
	}
}

// Right enters the submenu of the highlighted item.
func (c *ContextMenu) Right() {
	if !c.open || c.hover < 0 || !c.items[c.hover].IsParent() {
		return
	}
	c.openSub(c.hover)
	c.inSub = true
	c.subHover = 0
}

// Left leaves the submenu.
func (c *ContextMenu) Left() {
	if !c.inSub {
		return
	}
	c.inSub = false
	c.sub, c.subHover = -1, -1
}

// Activate chooses the highlighted item.
func (c *ContextMenu) Activate() string {
	if !c.open {
		return ""
	}
	if c.inSub && c.sub >= 0 && c.subHover >= 0 {
		return c.choose(c.items[c.sub].Submenu[c.subHover])
	}
	if c.hover < 0 {
		return ""
	}
	if c.items[c.hover].IsParent() {
		c.Right()
		return ""
	}
	return c.choose(c.items[c.hover])
}

// within is a half-open containment test matching how rows are drawn.
func within(r geometry.Rect, p geometry.Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}
