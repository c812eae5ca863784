package mcp

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/termdesk/internal/actionlog"
	"github.com/1broseidon/termdesk/internal/config"
	"github.com/1broseidon/termdesk/internal/ipc"
	"github.com/1broseidon/termdesk/internal/store"
)

const (
	ServerName    = "termdesk"
	ServerVersion = "0.1.0"
)

// Desktop is the part of the control socket the server drives.
// *ipc.Client satisfies it.
type Desktop interface {
	GetStatus() (*ipc.StatusData, error)
	OpenApp(app string) (*ipc.WindowInfo, error)
	CloseWindow(id string) error
	Refresh() error
	Notify(message, level string, duration time.Duration) error
}

// Server exposes the sandbox file store and a running desktop as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	files     *store.Client
	desktop   Desktop
	slog      *slog.Logger
	actions   *actionlog.Logger
}

// NewServer creates a server on the configured sandbox that talks to the
// desktop over the default control socket.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var actions *actionlog.Logger
	logCfg := cfg.GetLoggingConfig()
	if logCfg.Enabled {
		var err error
		actions, err = actionlog.New(actionlog.Config{
			Enabled:   true,
			Level:     actionlog.ParseLevel(logCfg.Level),
			FilePath:  logCfg.File,
			MaxSizeMB: logCfg.MaxSizeMB,
			MaxFiles:  logCfg.MaxFiles,
		})
		if err != nil {
			log.Printf("Warning: failed to initialize MCP action log: %v", err)
			actions = nil
		}
	}

	files := store.NewClient(store.NewDiskBackend(cfg.SandboxPath()))
	return newServer(files, ipc.NewClient(), slog.Default(), actions), nil
}

func newServer(files *store.Client, desktop Desktop, logger *slog.Logger, actions *actionlog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		files:   files,
		desktop: desktop,
		slog:    logger,
		actions: actions,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close releases server resources.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	return s.actions.Close()
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_files",
		Description: "List the files and folders in a sandbox folder. Folders come first, then files, each sorted by name.",
	}, s.handleListFiles)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "read_file",
		Description: "Read a text file from the sandbox.",
	}, s.handleReadFile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "write_file",
		Description: "Create or replace a text file in the sandbox. Files written to the root appear as desktop icons.",
	}, s.handleWriteFile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "delete_path",
		Description: "Delete a file, or a folder and everything in it, from the sandbox.",
	}, s.handleDeletePath)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_folder",
		Description: "Create a folder in the sandbox. Missing parents are created.",
	}, s.handleCreateFolder)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_path",
		Description: "Move or rename a file or folder inside the sandbox. Fails when the destination already exists.",
	}, s.handleMovePath)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "desktop_status",
		Description: "Report whether a desktop is running and summarize its windows, icons and appearance.",
	}, s.handleDesktopStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_app",
		Description: "Open an application window on the running desktop, or focus it when it is already open.",
	}, s.handleOpenApp)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window on the running desktop.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "notify",
		Description: "Show a toast notification on the running desktop.",
	}, s.handleNotify)
}

// refresh asks a running desktop to reload its icons. It reports whether the
// desktop answered.
func (s *Server) refresh() bool {
	if s.desktop == nil {
		return false
	}
	if err := s.desktop.Refresh(); err != nil {
		s.slog.Debug("desktop refresh skipped", "error", err)
		return false
	}
	return true
}
