package graph

import (
	"sync"

	"github.com/hydrowatch/watermap/internal/domain"
)

// SlotRole names which endpoint of the next polyline a selected point fills.
type SlotRole string

const (
	RoleStart SlotRole = "start"
	RoleEnd   SlotRole = "end"
)

// Coords is a coordinate pair held in text form, exactly as the entry form
// carries it. Values stay unparsed until an add operation commits them.
type Coords struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// IsEmpty reports whether either field is missing.
func (c Coords) IsEmpty() bool {
	return c.Latitude == "" || c.Longitude == ""
}

// SelectionState is a snapshot of the pending entry-form state.
type SelectionState struct {
	Start Coords `json:"start"`
	End   Coords `json:"end"`
	Label string `json:"label"`
}

// PendingSelection captures an in-progress marker or polyline entry. A map
// click fills the start slot (and discards any in-progress label, since the
// click starts a new entry); a marker click fills the end slot. No ordering
// is enforced, end may be set before start.
type PendingSelection struct {
	mu    sync.Mutex
	state SelectionState
}

// NewPendingSelection creates an empty selection.
func NewPendingSelection() *PendingSelection {
	return &PendingSelection{}
}

// SelectPoint writes the point's fixed-precision string form into the slot
// for the given role.
func (p *PendingSelection) SelectPoint(pt domain.GeoPoint, role SlotRole) {
	c := Coords{
		Latitude:  domain.FormatCoord(pt.Lat),
		Longitude: domain.FormatCoord(pt.Lon),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch role {
	case RoleEnd:
		p.state.End = c
	default:
		p.state.Start = c
		p.state.Label = ""
	}
}

// SetLabel records the in-progress marker label.
func (p *PendingSelection) SetLabel(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Label = label
}

// Snapshot returns a copy of the current selection.
func (p *PendingSelection) Snapshot() SelectionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Clear resets every slot to empty, as after a successful commit.
func (p *PendingSelection) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = SelectionState{}
}
