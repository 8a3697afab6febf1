package hyprland

import (
	"math"

	"github.com/grovetools/luminashot/pkg/models"
)

type workspaceRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type monitorJSON struct {
	ID              int          `json:"id"`
	Name            string       `json:"name"`
	X               int          `json:"x"`
	Y               int          `json:"y"`
	Width           int          `json:"width"`
	Height          int          `json:"height"`
	Scale           float64      `json:"scale"`
	Transform       int          `json:"transform"`
	Focused         bool         `json:"focused"`
	ActiveWorkspace workspaceRef `json:"activeWorkspace"`
}

type clientJSON struct {
	Address   string       `json:"address"`
	Mapped    bool         `json:"mapped"`
	Hidden    bool         `json:"hidden"`
	At        [2]int       `json:"at"`
	Size      [2]int       `json:"size"`
	Workspace workspaceRef `json:"workspace"`
	Class     string       `json:"class"`
	Title     string       `json:"title"`
}

type cursorJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// toModel converts the monitor to logical coordinates. Hyprland reports the
// mode size in physical pixels while positions are already logical.
func (m monitorJSON) toModel() models.Monitor {
	scale := m.Scale
	if scale <= 0 {
		scale = 1
	}

	width := int(math.Round(float64(m.Width) / scale))
	height := int(math.Round(float64(m.Height) / scale))
	// Odd transforms rotate by 90 or 270 degrees.
	if m.Transform%2 == 1 {
		width, height = height, width
	}

	return models.Monitor{
		ID:                m.ID,
		Name:              m.Name,
		Rect:              models.Rect{X: m.X, Y: m.Y, Width: width, Height: height},
		Scale:             scale,
		Focused:           m.Focused,
		ActiveWorkspaceID: m.ActiveWorkspace.ID,
	}
}

func (c clientJSON) toModel() models.Window {
	return models.Window{
		Address:     c.Address,
		WorkspaceID: c.Workspace.ID,
		Rect:        models.Rect{X: c.At[0], Y: c.At[1], Width: c.Size[0], Height: c.Size[1]},
		Title:       c.Title,
		Class:       c.Class,
	}
}

// selectable reports whether the client can be offered for selection.
func (c clientJSON) selectable() bool {
	return c.Mapped && !c.Hidden && c.Size[0] > 0 && c.Size[1] > 0
}
