package models

// Monitor is a snapshot of one output as reported by the compositor.
type Monitor struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	Rect              Rect    `json:"rect"`
	Scale             float64 `json:"scale"`
	Focused           bool    `json:"focused"`
	ActiveWorkspaceID int     `json:"active_workspace_id"`
}

// Workspace is the active workspace of a monitor at snapshot time.
type Workspace struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	MonitorName string   `json:"monitor"`
	Windows     []string `json:"windows"` // window addresses in listing order
}

// Window is a transient snapshot entry for one mapped client.
type Window struct {
	Address     string `json:"address"`
	WorkspaceID int    `json:"workspace_id"`
	Rect        Rect   `json:"rect"`
	Title       string `json:"title"`
	Class       string `json:"class"`
}
