package mcp

// ListFilesInput is the input for the list_files tool.
type ListFilesInput struct {
	Path string `json:"path,omitempty" jsonschema:"Folder to list, relative to the sandbox root (default: the root)"`
}

// FileEntry describes one item in a folder.
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// ListFilesOutput is the output for the list_files tool.
type ListFilesOutput struct {
	Path    string      `json:"path"`
	Entries []FileEntry `json:"entries"`
}

// ReadFileInput is the input for the read_file tool.
type ReadFileInput struct {
	Path string `json:"path" jsonschema:"required,File path relative to the sandbox root"`
}

// ReadFileOutput is the output for the read_file tool.
type ReadFileOutput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// WriteFileInput is the input for the write_file tool.
type WriteFileInput struct {
	Path    string `json:"path" jsonschema:"required,File path relative to the sandbox root. Missing parent folders are created."`
	Content string `json:"content" jsonschema:"Full file contents; an existing file is replaced"`
}

// PathInput is the input for tools that act on a single path.
type PathInput struct {
	Path string `json:"path" jsonschema:"required,Path relative to the sandbox root"`
}

// MovePathInput is the input for the move_path tool.
type MovePathInput struct {
	From string `json:"from" jsonschema:"required,Existing path relative to the sandbox root"`
	To   string `json:"to" jsonschema:"required,Destination path; must not exist yet"`
}

// ChangeOutput is returned by tools that modify the file store.
type ChangeOutput struct {
	Path string `json:"path"`
	// Refreshed reports whether a running desktop picked up the change.
	Refreshed bool `json:"refreshed"`
}

// DesktopStatusInput is the input for the desktop_status tool.
type DesktopStatusInput struct{}

// DesktopStatusOutput is the output for the desktop_status tool.
type DesktopStatusOutput struct {
	Running       bool   `json:"running"`
	UptimeSeconds int64  `json:"uptime_seconds,omitempty"`
	Windows       int    `json:"windows"`
	Icons         int    `json:"icons"`
	ActiveWindow  string `json:"active_window,omitempty"`
	Theme         string `json:"theme,omitempty"`
	Wallpaper     string `json:"wallpaper,omitempty"`
	Sandbox       string `json:"sandbox,omitempty"`
}

// OpenAppInput is the input for the open_app tool.
type OpenAppInput struct {
	App string `json:"app" jsonschema:"required,Application id: explorer, notes, calculator, settings or about"`
}

// WindowOutput describes a desktop window.
type WindowOutput struct {
	ID        string `json:"id"`
	App       string `json:"app"`
	Title     string `json:"title"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Minimized bool   `json:"minimized"`
	Maximized bool   `json:"maximized"`
	Active    bool   `json:"active"`
}

// CloseWindowInput is the input for the close_window tool.
type CloseWindowInput struct {
	ID string `json:"id" jsonschema:"required,Window id as reported by open_app or desktop_status"`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	ID     string `json:"id"`
	Closed bool   `json:"closed"`
}

// NotifyInput is the input for the notify tool.
type NotifyInput struct {
	Message string `json:"message" jsonschema:"required,Text shown in the toast"`
	Level   string `json:"level,omitempty" jsonschema:"info, success or error (default: info)"`
	// Duration is in milliseconds.
	Duration int `json:"duration,omitempty" jsonschema:"How long the toast stays visible in milliseconds (default: 3000)"`
}

// NotifyOutput is the output for the notify tool.
type NotifyOutput struct {
	Delivered bool `json:"delivered"`
}
