package hyprland

import (
	"context"
	"fmt"

	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/sirupsen/logrus"
)

// Monitors returns every output in Hyprland's listing order.
func (c *Client) Monitors(ctx context.Context) ([]models.Monitor, error) {
	var raw []monitorJSON
	if err := c.requestJSON(ctx, "monitors", &raw); err != nil {
		return nil, err
	}

	monitors := make([]models.Monitor, 0, len(raw))
	for _, m := range raw {
		monitors = append(monitors, m.toModel())
	}
	return monitors, nil
}

// CursorPosition returns the pointer in logical coordinates.
func (c *Client) CursorPosition(ctx context.Context) (int, int, error) {
	var pos cursorJSON
	if err := c.requestJSON(ctx, "cursorpos", &pos); err != nil {
		return 0, 0, err
	}
	return pos.X, pos.Y, nil
}

// MonitorUnderCursor returns the monitor containing the pointer, or the
// focused monitor if the pointer is outside every monitor.
func (c *Client) MonitorUnderCursor(ctx context.Context) (models.Monitor, error) {
	x, y, err := c.CursorPosition(ctx)
	if err != nil {
		return models.Monitor{}, err
	}
	monitors, err := c.Monitors(ctx)
	if err != nil {
		return models.Monitor{}, err
	}

	if m, ok := pickMonitor(monitors, x, y); ok {
		c.logger.WithFields(logrus.Fields{
			"monitor": m.Name,
			"cursor":  fmt.Sprintf("%d,%d", x, y),
		}).Debug("Resolved monitor under cursor")
		return m, nil
	}
	return models.Monitor{}, errors.QueryFailed("j/monitors", fmt.Errorf("compositor reported no monitors"))
}

func pickMonitor(monitors []models.Monitor, x, y int) (models.Monitor, bool) {
	for _, m := range monitors {
		if m.Rect.Contains(x, y) {
			return m, true
		}
	}
	for _, m := range monitors {
		if m.Focused {
			return m, true
		}
	}
	if len(monitors) > 0 {
		return monitors[0], true
	}
	return models.Monitor{}, false
}

// ActiveWorkspaceWindows returns the workspace currently shown on monitor
// and its selectable windows in listing order. The monitor's active
// workspace is re-read so a stale snapshot is never used.
func (c *Client) ActiveWorkspaceWindows(ctx context.Context, monitor models.Monitor) (models.Workspace, []models.Window, error) {
	var rawMonitors []monitorJSON
	if err := c.requestJSON(ctx, "monitors", &rawMonitors); err != nil {
		return models.Workspace{}, nil, err
	}

	var ws models.Workspace
	found := false
	for _, m := range rawMonitors {
		if m.Name == monitor.Name {
			ws = models.Workspace{ID: m.ActiveWorkspace.ID, Name: m.ActiveWorkspace.Name, MonitorName: m.Name}
			found = true
			break
		}
	}
	if !found {
		return models.Workspace{}, nil, errors.QueryFailed("j/monitors", fmt.Errorf("monitor %s disappeared", monitor.Name)).
			WithDetail("monitor", monitor.Name)
	}

	var rawClients []clientJSON
	if err := c.requestJSON(ctx, "clients", &rawClients); err != nil {
		return models.Workspace{}, nil, err
	}

	var windows []models.Window
	for _, cl := range rawClients {
		if cl.Workspace.ID != ws.ID || !cl.selectable() {
			continue
		}
		windows = append(windows, cl.toModel())
		ws.Windows = append(ws.Windows, cl.Address)
	}

	c.logger.WithFields(logrus.Fields{
		"monitor":   monitor.Name,
		"workspace": ws.ID,
		"windows":   len(windows),
	}).Debug("Snapshot of active workspace")
	return ws, windows, nil
}

// Window returns fresh geometry for the client with the given address.
func (c *Client) Window(ctx context.Context, address string) (models.Window, error) {
	var rawClients []clientJSON
	if err := c.requestJSON(ctx, "clients", &rawClients); err != nil {
		return models.Window{}, err
	}

	for _, cl := range rawClients {
		if cl.Address == address {
			return cl.toModel(), nil
		}
	}
	return models.Window{}, errors.QueryFailed("j/clients", fmt.Errorf("window %s not found", address)).
		WithDetail("address", address)
}

// ActiveWorkspaceID returns the workspace shown on the focused monitor.
func (c *Client) ActiveWorkspaceID(ctx context.Context) (int, error) {
	var ws workspaceRef
	if err := c.requestJSON(ctx, "activeworkspace", &ws); err != nil {
		return models.UnknownWorkspace, err
	}
	return ws.ID, nil
}
