// Package observer streams simulation frames to websocket clients and accepts
// pause, resume and reset commands from them.
package observer

import (
	"github.com/pthm-cable/survival/game"
	"github.com/pthm-cable/survival/telemetry"
	"github.com/pthm-cable/survival/traits"
)

// ProtocolVersion is checked in the SUBSCRIBE handshake.
const ProtocolVersion = "1"

// Message types.
const (
	TypeSubscribe = "SUBSCRIBE"
	TypeFrame     = "FRAME"
	TypeCommand   = "COMMAND"
)

// SubscribeMsg must be the first message a client sends.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// CommandMsg carries a control action such as "PAUSE" or "RESET".
type CommandMsg struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// Frame is everything a client needs to draw one tick.
type Frame struct {
	Type       string  `json:"type"`
	Tick       int32   `json:"tick"`
	Generation int     `json:"generation"`
	ElapsedSec float64 `json:"elapsed_sec"`
	Paused     bool    `json:"paused"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`

	// Panel is the stats overlay text, one entry per line.
	Panel []string `json:"panel"`

	Animals []AnimalFrame `json:"animals"`
	Plants  []PlantFrame  `json:"plants"`

	Sample *telemetry.Sample `json:"sample,omitempty"`
}

// AnimalFrame is a filled circle in the animal's colour with a diet marker on top.
type AnimalFrame struct {
	ID      uint32       `json:"id"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Radius  float64      `json:"radius"`
	Heading float64      `json:"heading"`
	Color   traits.Color `json:"color"`
	Diet    traits.Diet  `json:"diet"`
	Marker  traits.Color `json:"marker"`
}

// PlantFrame is a filled circle.
type PlantFrame struct {
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Radius float64      `json:"radius"`
	Color  traits.Color `json:"color"`
}

// NewFrame captures the game's current state. It must run on the goroutine
// that steps the game.
func NewFrame(g *game.Game) Frame {
	cfg := g.Config()
	f := Frame{
		Type:       TypeFrame,
		Tick:       g.Tick(),
		Generation: g.Generation(),
		ElapsedSec: g.Elapsed().Seconds(),
		Paused:     g.Paused(),
		Width:      cfg.World.Width,
		Height:     cfg.World.Height,
		Panel:      g.TraitSummary().Lines(),
		Animals:    []AnimalFrame{},
		Plants:     []PlantFrame{},
	}

	for _, a := range g.Animals() {
		if !a.Alive {
			continue
		}
		f.Animals = append(f.Animals, AnimalFrame{
			ID:      a.ID,
			X:       a.X,
			Y:       a.Y,
			Radius:  5 + a.Genome.Size*5,
			Heading: a.Direction,
			Color:   a.Genome.Color,
			Diet:    a.Genome.Diet,
			Marker:  a.Genome.Diet.Marker(),
		})
	}
	for _, p := range g.Plants() {
		f.Plants = append(f.Plants, PlantFrame{
			X:      p.X,
			Y:      p.Y,
			Radius: 3 + p.Size*3,
			Color:  p.Color,
		})
	}

	if last, ok := g.LastSample(); ok {
		f.Sample = &last
	}

	return f
}
