// Package mouse maps terminal mouse events onto named screen regions.
package mouse

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// doubleClickWindow is the max gap between clicks on one region that counts
// as a double click.
const doubleClickWindow = 400 * time.Millisecond

// Rect represents a rectangular region.
type Rect struct {
	X, Y, W, H int
}

// Contains returns true if the point (x, y) is within the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Region is a named rectangular hit region with associated data.
type Region struct {
	ID   string
	Rect Rect
	Data any
}

// HitMap tracks hit regions for mouse click detection.
type HitMap struct {
	regions []Region
}

// NewHitMap creates a new empty HitMap.
func NewHitMap() *HitMap {
	return &HitMap{regions: make([]Region, 0, 16)}
}

// Clear removes all regions from the hit map.
func (h *HitMap) Clear() {
	h.regions = h.regions[:0]
}

// Add adds a new region to the hit map.
func (h *HitMap) Add(id string, rect Rect, data any) {
	h.regions = append(h.regions, Region{ID: id, Rect: rect, Data: data})
}

// AddRect adds a region using individual coordinates.
func (h *HitMap) AddRect(id string, x, y, w, height int, data any) {
	h.Add(id, Rect{X: x, Y: y, W: w, H: height}, data)
}

// Test returns the topmost region containing the point, or nil.
func (h *HitMap) Test(x, y int) *Region {
	// Later regions were added on top.
	for i := len(h.regions) - 1; i >= 0; i-- {
		if h.regions[i].Rect.Contains(x, y) {
			return &h.regions[i]
		}
	}
	return nil
}

// Regions returns a copy of all registered regions.
func (h *HitMap) Regions() []Region {
	return append([]Region(nil), h.regions...)
}

// Handler combines a HitMap with click tracking.
type Handler struct {
	HitMap *HitMap

	now             func() time.Time
	lastClickTime   time.Time
	lastClickRegion string
}

// NewHandler creates a new mouse handler.
func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap(), now: time.Now}
}

// ActionType represents the type of mouse action detected.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionDoubleClick
	ActionScrollUp
	ActionScrollDown
	ActionHover
)

// MouseAction represents a processed mouse event.
type MouseAction struct {
	Type   ActionType
	Region *Region
	X, Y   int
	Delta  int // Scroll delta
}

// HandleMouse turns a tea.MouseMsg into an action on the region under the
// pointer.
func (h *Handler) HandleMouse(msg tea.MouseMsg) MouseAction {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			return h.click(msg.X, msg.Y)
		case tea.MouseButtonWheelUp:
			return MouseAction{Type: ActionScrollUp, Region: h.HitMap.Test(msg.X, msg.Y), X: msg.X, Y: msg.Y, Delta: -3}
		case tea.MouseButtonWheelDown:
			return MouseAction{Type: ActionScrollDown, Region: h.HitMap.Test(msg.X, msg.Y), X: msg.X, Y: msg.Y, Delta: 3}
		}
	case tea.MouseActionMotion:
		return MouseAction{Type: ActionHover, Region: h.HitMap.Test(msg.X, msg.Y), X: msg.X, Y: msg.Y}
	}
	return MouseAction{Type: ActionNone}
}

func (h *Handler) click(x, y int) MouseAction {
	region := h.HitMap.Test(x, y)
	if region == nil {
		return MouseAction{Type: ActionNone}
	}

	now := h.now()
	if region.ID == h.lastClickRegion && now.Sub(h.lastClickTime) < doubleClickWindow {
		// Reset so a third click starts over.
		h.lastClickRegion = ""
		h.lastClickTime = time.Time{}
		return MouseAction{Type: ActionDoubleClick, Region: region, X: x, Y: y}
	}
	h.lastClickRegion = region.ID
	h.lastClickTime = now
	return MouseAction{Type: ActionClick, Region: region, X: x, Y: y}
}
