// Package joypad emulates the Game Boy's joypad port (P1/JOYP), including
// the direction/action selector and the high-to-low edge detector that
// raises the joypad interrupt.
package joypad

import (
	"github.com/dmgo-project/dmgo/internal/bits"
	"github.com/dmgo-project/dmgo/internal/interrupts"
)

// Button identifies a physical button.
type Button uint8

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// State tracks which buttons are currently held and the host-selected
// P1 selector bits, and raises the joypad interrupt on falling edges of
// the composed nibble.
type State struct {
	selector uint8 // bits 4-5 of P1, as written by the CPU (0 = selected)
	held     uint8 // bitmask of Button, 1 = pressed
	irq      *interrupts.Service
}

// New returns a joypad with no selector lines active and no buttons held.
func New(irq *interrupts.Service) *State {
	return &State{selector: 0x30, irq: irq}
}

// compose returns the low nibble of P1 for the current selector and held
// buttons: a bit is 0 (pulled low) when the corresponding button is held
// and its group is selected.
func (s *State) compose() uint8 {
	nibble := uint8(0x0F)
	actionSelected := s.selector&0x20 == 0
	directionSelected := s.selector&0x10 == 0

	if directionSelected {
		if bits.Test(s.held, uint8(Right)) {
			nibble &^= 0x01
		}
		if bits.Test(s.held, uint8(Left)) {
			nibble &^= 0x02
		}
		if bits.Test(s.held, uint8(Up)) {
			nibble &^= 0x04
		}
		if bits.Test(s.held, uint8(Down)) {
			nibble &^= 0x08
		}
	}
	if actionSelected {
		if bits.Test(s.held, uint8(A)) {
			nibble &^= 0x01
		}
		if bits.Test(s.held, uint8(B)) {
			nibble &^= 0x02
		}
		if bits.Test(s.held, uint8(Select)) {
			nibble &^= 0x04
		}
		if bits.Test(s.held, uint8(Start)) {
			nibble &^= 0x08
		}
	}
	return nibble
}

// Read returns the full P1 register, including the selector bits and the
// two unused top bits, which always read as 1.
func (s *State) Read() uint8 {
	return 0xC0 | s.selector | s.compose()
}

// Write updates the selector bits. Bits 0-3 are read-only from the CPU's
// perspective.
func (s *State) Write(value uint8) {
	before := s.compose()
	s.selector = value & 0x30
	after := s.compose()
	s.raiseOnFallingEdge(before, after)
}

// Press marks a button as held, raising the joypad interrupt if doing so
// causes a high-to-low transition of the composed nibble.
func (s *State) Press(b Button) {
	before := s.compose()
	s.held = bits.Set(s.held, uint8(b))
	after := s.compose()
	s.raiseOnFallingEdge(before, after)
}

// Release marks a button as no longer held.
func (s *State) Release(b Button) {
	s.held = bits.Reset(s.held, uint8(b))
}

func (s *State) raiseOnFallingEdge(before, after uint8) {
	if before&^after != 0 {
		s.irq.Request(interrupts.Joypad)
	}
}

// Snapshot is the JSON-serializable snapshot of the joypad controller.
type Snapshot struct {
	Selector uint8 `json:"selector"`
	Held     uint8 `json:"held"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{Selector: s.selector, Held: s.held}
}

func (s *State) Restore(raw Snapshot) {
	s.selector = raw.Selector
	s.held = raw.Held
}
