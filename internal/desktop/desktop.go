// Package desktop wires the icon layer, window layer, overlays and
// applications into one event-driven service. Every method runs on the
// bubbletea event loop; store and layout I/O happens in returned commands.
package desktop

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/actionlog"
	"github.com/1broseidon/termdesk/internal/apps"
	"github.com/1broseidon/termdesk/internal/config"
	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/icons"
	"github.com/1broseidon/termdesk/internal/layout"
	"github.com/1broseidon/termdesk/internal/overlay"
	"github.com/1broseidon/termdesk/internal/store"
	"github.com/1broseidon/termdesk/internal/windows"
)

// Focus owners other than window ids.
const (
	FocusDesktop = "desktop"
	FocusModal   = "modal"
)

// Deps are the collaborators a Desktop is built from.
type Deps struct {
	Config  *config.Config
	Store   *store.Client
	Layout  layout.KV
	Apps    *apps.Host
	Actions *actionlog.Logger
	Logger  *slog.Logger
	// Sandbox is shown in status output.
	Sandbox string
}

// Desktop is the whole interactive state of one session.
type Desktop struct {
	ctx     context.Context
	cfg     *config.Config
	store   *store.Client
	kv      layout.KV
	host    *apps.Host
	actions *actionlog.Logger
	logger  *slog.Logger
	sandbox string

	size    geometry.Size
	icons   *icons.Manager
	windows *windows.Manager
	menu    *overlay.ContextMenu
	start   *overlay.StartMenu
	modals  overlay.ModalStack
	toasts  *overlay.Toasts

	appearance apps.Appearance
	restore    []windows.Summary

	focus     string
	menuPoint geometry.Point
	press     pressTarget
	pending   []tea.Cmd
	started   time.Time
}

// New builds a desktop of the given size in logical pixels.
func New(ctx context.Context, deps Deps, size geometry.Size) *Desktop {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	host := deps.Apps
	if host == nil {
		host = apps.NewHost(apps.Builtin()...)
	}
	kv := deps.Layout
	if kv == nil {
		kv = layout.NewMemory()
	}

	cellW, cellH := cfg.Display.CellWidth, cfg.Display.CellHeight
	menu := overlay.NewContextMenu(overlay.MenuMetrics{Width: 22 * cellW, ItemHeight: cellH})
	menu.SetHideDelay(cfg.SubmenuCloseDelay())

	wopts := cfg.WindowOptions()
	var entries []overlay.StartEntry
	for _, desc := range host.Descriptors() {
		entries = append(entries, overlay.StartEntry{Name: desc.Name, Label: desc.Title, Glyph: desc.Glyph})
		// Configured sizes win over the app's own preference.
		if _, ok := wopts.AppSizes[desc.Name]; !ok && !desc.DefaultSize.Empty() {
			wopts.AppSizes[desc.Name] = desc.DefaultSize
		}
	}

	d := &Desktop{
		ctx:     ctx,
		cfg:     cfg,
		store:   deps.Store,
		kv:      kv,
		host:    host,
		actions: deps.Actions,
		logger:  logger,
		sandbox: deps.Sandbox,
		size:    size,
		icons:   icons.NewManager(cfg.IconOptions(), size),
		windows: windows.NewManager(wopts, size),
		menu:    menu,
		start:   overlay.NewStartMenu(entries),
		toasts: overlay.NewToasts(overlay.ToastMetrics{
			Width:  34 * cellW,
			Height: 3 * cellH,
			Margin: cellH,
		}),
		appearance: apps.Appearance{
			Theme:          cfg.Theme,
			Wallpaper:      cfg.Wallpaper,
			WallpaperColor: cfg.WallpaperColor,
			SnapToGrid:     cfg.Icons.SnapToGrid,
			OverlapPolicy:  cfg.Icons.OverlapPolicy,
		},
		focus:   FocusDesktop,
		started: time.Now(),
	}
	return d
}

// Start reads the persisted layout and creates the application icons. A
// snapshot with undecodable values is used as far as it goes.
func (d *Desktop) Start(ctx context.Context) error {
	snap, err := layout.LoadWithDefaults(ctx, d.kv, layout.Snapshot{
		Theme:          d.cfg.Theme,
		Wallpaper:      d.cfg.Wallpaper,
		WallpaperColor: d.cfg.WallpaperColor,
	})
	if err != nil {
		if snap.Theme == "" {
			return err
		}
		d.logger.Warn("layout snapshot partially unreadable", "error", err)
		d.actions.Log(actionlog.ActionLayoutError, map[string]any{"error": err})
	}

	d.appearance.Theme = snap.Theme
	d.appearance.Wallpaper = snap.Wallpaper
	d.appearance.WallpaperColor = snap.WallpaperColor
	d.icons.Load(snap.Icons)
	d.icons.EnsureApps(d.appIcons())
	d.restore = snap.Restorable()

	d.actions.Log(actionlog.ActionStart, map[string]any{
		"icons":   len(snap.Icons),
		"windows": len(d.restore),
	})
	d.logger.Info("desktop started", "width", d.size.Width, "height", d.size.Height)
	return nil
}

func (d *Desktop) appIcons() []icons.AppIcon {
	descs := d.host.Descriptors()
	out := make([]icons.AppIcon, 0, len(descs))
	for _, desc := range descs {
		out = append(out, icons.AppIcon{Name: desc.Name, Label: desc.Title, Glyph: desc.Glyph})
	}
	return out
}

// Init lists the store root and reopens the windows that were open and not
// minimized when the last session ended.
func (d *Desktop) Init() tea.Cmd {
	cmds := []tea.Cmd{d.listRoot()}
	for _, s := range d.restore {
		r := s.Rect()
		cmd, err := d.openApp(s.App(), &r)
		if err != nil {
			d.logger.Warn("skipping saved window", "id", s.ID, "error", err)
			continue
		}
		if s.IsMaximized {
			d.windows.ToggleMaximize(s.ID)
		}
		cmds = append(cmds, cmd)
	}
	d.restore = nil
	return d.batch(cmds...)
}

// Shutdown writes the window layout. It is called once before exit.
func (d *Desktop) Shutdown(ctx context.Context) error {
	sums := d.windows.Summaries()
	var errs []error
	if err := layout.SaveWindows(ctx, d.kv, sums); err != nil {
		errs = append(errs, err)
	}
	if err := layout.SaveIcons(ctx, d.kv, d.icons.Records()); err != nil {
		errs = append(errs, err)
	}
	err := errors.Join(errs...)
	if err != nil {
		d.actions.Log(actionlog.ActionLayoutError, map[string]any{"error": err})
	}
	d.actions.Log(actionlog.ActionStop, map[string]any{"windows": len(sums)})
	return err
}

// Resize changes the desktop area, keeping icons and windows inside it.
func (d *Desktop) Resize(size geometry.Size) {
	if size == d.size {
		return
	}
	d.size = size
	d.icons.SetBounds(size)
	d.windows.SetBounds(size)
	if d.menu.IsOpen() {
		d.menu.Close()
	}
}

func (d *Desktop) Size() geometry.Size              { return d.size }
func (d *Desktop) Config() *config.Config           { return d.cfg }
func (d *Desktop) Icons() *icons.Manager            { return d.icons }
func (d *Desktop) Windows() *windows.Manager        { return d.windows }
func (d *Desktop) Menu() *overlay.ContextMenu       { return d.menu }
func (d *Desktop) StartMenu() *overlay.StartMenu    { return d.start }
func (d *Desktop) Modals() *overlay.ModalStack      { return &d.modals }
func (d *Desktop) Toasts() *overlay.Toasts          { return d.toasts }
func (d *Desktop) Host() *apps.Host                 { return d.host }
func (d *Desktop) Appearance() apps.Appearance      { return d.appearance }
func (d *Desktop) Sandbox() string                  { return d.sandbox }
func (d *Desktop) Uptime() time.Duration            { return time.Since(d.started) }
func (d *Desktop) MenuPoint() geometry.Point        { return d.menuPoint }
func (d *Desktop) Logger() *slog.Logger             { return d.logger }
func (d *Desktop) ActionLog() *actionlog.Logger     { return d.actions }
func (d *Desktop) StoreClient() *store.Client       { return d.store }
func (d *Desktop) LayoutStore() layout.KV           { return d.kv }
func (d *Desktop) Context() context.Context         { return d.ctx }
func (d *Desktop) CellSize() (width, height int)    { return d.cfg.Display.CellWidth, d.cfg.Display.CellHeight }
func (d *Desktop) ToastDuration() time.Duration     { return d.cfg.ToastDuration() }
func (d *Desktop) DoubleClickWindow() time.Duration { return d.cfg.DoubleClick() }

// Focus names the keyboard owner: a window id, FocusDesktop, or FocusModal
// while a dialog is open.
func (d *Desktop) Focus() string {
	if d.modals.Active() {
		return FocusModal
	}
	return d.focus
}

// batch collects cmds together with anything queued by app services.
func (d *Desktop) batch(cmds ...tea.Cmd) tea.Cmd {
	all := append(cmds, d.pending...)
	d.pending = nil
	return tea.Batch(all...)
}

// Flush drains commands queued outside an input handler, e.g. by a call
// arriving over the control socket.
func (d *Desktop) Flush() tea.Cmd { return d.batch() }

func (d *Desktop) queue(cmd tea.Cmd) {
	if cmd != nil {
		d.pending = append(d.pending, cmd)
	}
}

// Notify shows a toast. Durations are raised to the configured floor.
func (d *Desktop) Notify(message string, level overlay.Level, dur time.Duration) tea.Cmd {
	if dur <= 0 {
		dur = d.cfg.ToastDuration()
	}
	dur = max(dur, d.cfg.ToastMinDuration())
	t := d.toasts.Add(message, level, dur)
	return t.ExpireCmd()
}

func (d *Desktop) storeError(op, path, msg string) tea.Cmd {
	d.actions.Log(actionlog.ActionStoreError, map[string]any{"op": op, "path": path, "error": msg})
	d.logger.Error("store operation failed", "op", op, "path", path, "error", msg)
	return d.Notify(msg, overlay.LevelError, 0)
}
