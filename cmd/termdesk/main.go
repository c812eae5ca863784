package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/termdesk/internal/actionlog"
	"github.com/1broseidon/termdesk/internal/apps"
	"github.com/1broseidon/termdesk/internal/config"
	"github.com/1broseidon/termdesk/internal/desktop"
	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/ipc"
	"github.com/1broseidon/termdesk/internal/layout"
	"github.com/1broseidon/termdesk/internal/runtimepath"
	"github.com/1broseidon/termdesk/internal/store"
	"github.com/1broseidon/termdesk/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runRun(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "open":
		os.Exit(runOpen(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "icons":
		os.Exit(runIcons(os.Args[2:]))
	case "refresh":
		os.Exit(runRefresh(os.Args[2:]))
	case "notify":
		os.Exit(runNotify(os.Args[2:]))
	case "fs":
		os.Exit(runFS(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: termdesk <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the desktop in this terminal")
	fmt.Fprintln(w, "  status              Show status of the running desktop")
	fmt.Fprintln(w, "  open <app>          Open or raise an application window")
	fmt.Fprintln(w, "  windows             List open windows")
	fmt.Fprintln(w, "  icons               List desktop icons")
	fmt.Fprintln(w, "  refresh             Re-read the file store and redraw icons")
	fmt.Fprintln(w, "  notify <message>    Show a toast on the desktop")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  fs ls [path]        List a folder of the file store")
	fmt.Fprintln(w, "  fs cat <path>       Print a file")
	fmt.Fprintln(w, "  fs write <path>     Write a file from an argument or stdin")
	fmt.Fprintln(w, "  fs rm <path>        Delete a file or folder")
	fmt.Fprintln(w, "  fs mkdir <path>     Create a folder")
	fmt.Fprintln(w, "  fs mv <from> <to>   Move or rename an entry")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'termdesk <command> --help' for command-specific options.")
}

func isHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// slogLevel maps the log_level setting onto slog.
func slogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newActionLogger(cfg *config.Config) (*actionlog.Logger, error) {
	logCfg := cfg.GetLoggingConfig()
	return actionlog.New(actionlog.Config{
		Enabled:   logCfg.Enabled,
		Level:     actionlog.ParseLevel(logCfg.Level),
		FilePath:  logCfg.File,
		MaxSizeMB: logCfg.MaxSizeMB,
		MaxFiles:  logCfg.MaxFiles,
	})
}

// openStore returns the file store rooted at the configured sandbox.
func openStore(cfg *config.Config) *store.Client {
	return store.NewClient(store.NewDiskBackend(cfg.SandboxPath()))
}

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/termdesk/config.yaml)")
	ephemeral := fs.Bool("ephemeral", false, "Keep files and layout in memory only")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: termdesk run [--path PATH] [--ephemeral]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the desktop in this terminal. The layout is saved on exit.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  Ctrl+A    Select all icons")
		fmt.Fprintln(os.Stderr, "  Delete    Delete selected files and folders")
		fmt.Fprintln(os.Stderr, "  F2        Rename the selected icon")
		fmt.Fprintln(os.Stderr, "  Enter     Open the selection")
		fmt.Fprintln(os.Stderr, "  F5        Refresh")
		fmt.Fprintln(os.Stderr, "  Ctrl+W    Close the focused window")
		fmt.Fprintln(os.Stderr, "  Ctrl+Q    Quit")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	slog.SetLogLoggerLevel(slogLevel(cfg.LogLevel))

	actions, err := newActionLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "action log disabled: %v\n", err)
	}
	defer actions.Close()

	var (
		client  *store.Client
		kv      layout.KV
		sandbox string
	)
	if *ephemeral {
		client = store.NewClient(store.NewMemBackend())
		kv = layout.NewMemory()
		sandbox = "(memory)"
	} else {
		sandbox = cfg.SandboxPath()
		if err := os.MkdirAll(sandbox, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create sandbox: %v\n", err)
			return 1
		}
		client = openStore(cfg)
		kv, err = layout.Open(cfg.State.Backend, cfg.StatePath())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	defer kv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := desktop.New(ctx, desktop.Deps{
		Config:  cfg,
		Store:   client,
		Layout:  kv,
		Apps:    apps.NewHost(apps.Builtin()...),
		Actions: actions,
		Logger:  slog.Default(),
		Sandbox: sandbox,
	}, geometry.Size{Width: 80 * cfg.Display.CellWidth, Height: 23 * cfg.Display.CellHeight})

	opts := tui.Options{LogFile: filepath.Join(config.DataDir(), "termdesk.log")}
	if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0755); err != nil {
		opts.LogFile = ""
	}
	if socketPath, err := runtimepath.SocketPath(); err != nil {
		fmt.Fprintf(os.Stderr, "control socket disabled: %v\n", err)
	} else {
		opts.SocketPath = socketPath
	}

	if err := tui.New(d, opts).Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func noArgs(name, usage string, args []string) (bool, int) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, 0
		}
		return false, 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return false, 2
	}
	return true, 0
}

func runStatus(args []string) int {
	if ok, code := noArgs("status", "termdesk status", args); !ok {
		return code
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("running:        %v\n", status.Running)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Printf("windows:        %d\n", status.Windows)
	fmt.Printf("icons:          %d\n", status.Icons)
	fmt.Printf("active_window:  %s\n", status.ActiveWindow)
	fmt.Printf("theme:          %s\n", status.Theme)
	fmt.Printf("wallpaper:      %s\n", status.Wallpaper)
	fmt.Printf("sandbox:        %s\n", status.Sandbox)
	fmt.Printf("size:           %dx%d\n", status.Width, status.Height)
	return 0
}

func runOpen(args []string) int {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	file := fs.String("file", "", "Open a store file in Notes instead of an app")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: termdesk open <app>")
		fmt.Fprintln(os.Stderr, "       termdesk open --file <path>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Apps: explorer, notes, calculator, settings, about")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if *file != "" {
		if fs.NArg() != 0 {
			fs.Usage()
			return 2
		}
		if err := client.OpenFile(*file); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	w, err := client.OpenApp(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(w.ID)
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers(headers...)
}

func flagYesNo(v bool) string {
	if v {
		return "yes"
	}
	return ""
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	list, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("no open windows")
		return 0
	}
	t := newTable("ID", "TITLE", "X", "Y", "WIDTH", "HEIGHT", "Z", "MIN", "MAX", "ACTIVE")
	for _, w := range list {
		t.Row(w.ID, w.Title,
			strconv.Itoa(w.X), strconv.Itoa(w.Y), strconv.Itoa(w.Width), strconv.Itoa(w.Height),
			strconv.Itoa(w.Z), flagYesNo(w.Minimized), flagYesNo(w.Maximized), flagYesNo(w.Active))
	}
	fmt.Println(t)
	return 0
}

func runIcons(args []string) int {
	fs := flag.NewFlagSet("icons", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	list, err := ipc.NewClient().ListIcons()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(list)
	}
	t := newTable("ID", "KIND", "LABEL", "X", "Y", "SELECTED")
	for _, ic := range list {
		t.Row(ic.ID, ic.Kind, ic.Label, strconv.Itoa(ic.X), strconv.Itoa(ic.Y), flagYesNo(ic.Selected))
	}
	fmt.Println(t)
	return 0
}

func runRefresh(args []string) int {
	if ok, code := noArgs("refresh", "termdesk refresh", args); !ok {
		return code
	}
	if err := ipc.NewClient().Refresh(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runNotify(args []string) int {
	fs := flag.NewFlagSet("notify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	level := fs.String("level", "info", "Toast level: info, success, error")
	duration := fs.Duration("duration", 0, "How long the toast stays up (default from config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: termdesk notify [--level L] [--duration D] <message>")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	message := strings.Join(fs.Args(), " ")
	if err := ipc.NewClient().Notify(message, *level, *duration); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || isHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  termdesk config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  termdesk config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  termdesk config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/termdesk/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/termdesk/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		fmt.Printf("# sandbox: %s\n", cfg.SandboxPath())
		fmt.Printf("# state:   %s\n", cfg.StatePath())
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/termdesk/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceBuiltin:
		if src.Name != "" {
			return "builtin:" + src.Name
		}
		return "builtin"
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}

// refreshDesktop asks a running desktop to re-read the store. It is quiet
// when no desktop is running.
func refreshDesktop() {
	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		return
	}
	if err := client.Refresh(); err != nil {
		log.Printf("refresh desktop: %v", err)
	}
}
