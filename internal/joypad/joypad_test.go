package joypad

import (
	"testing"

	"github.com/dmgo-project/dmgo/internal/interrupts"
	"github.com/stretchr/testify/require"
)

func TestReadWithNoSelectionReturnsAllHigh(t *testing.T) {
	s := New(interrupts.New())
	require.Equal(t, uint8(0xFF), s.Read())
}

func TestPressPullsLineLowWhenGroupSelected(t *testing.T) {
	s := New(interrupts.New())
	s.Write(0x20) // select direction group (bit 4 clear, bit 5 set)
	s.Press(Right)
	require.Equal(t, uint8(0), s.Read()&0x01)
	require.Equal(t, uint8(1), s.Read()&0x02>>1) // Left still released
}

func TestPressDoesNotAffectUnselectedGroup(t *testing.T) {
	s := New(interrupts.New())
	s.Write(0x10) // select action group only
	s.Press(Right)
	require.Equal(t, uint8(0x0F), s.Read()&0x0F, "direction press should not show up with actions selected")
}

func TestPressRaisesJoypadInterruptOnFallingEdge(t *testing.T) {
	irq := interrupts.New()
	irq.WriteIE(1 << interrupts.Joypad)
	s := New(irq)
	s.Write(0x20) // direction group selected
	require.False(t, irq.HasPending())

	s.Press(Down)
	require.True(t, irq.HasPending())
}

func TestReleaseDoesNotRaiseInterrupt(t *testing.T) {
	irq := interrupts.New()
	irq.WriteIE(1 << interrupts.Joypad)
	s := New(irq)
	s.Write(0x20)
	s.Press(Up)
	irq.WriteIF(0)
	require.False(t, irq.HasPending())

	s.Release(Up)
	require.False(t, irq.HasPending())
}

func TestWriteSelectorCanItselfRaiseInterrupt(t *testing.T) {
	irq := interrupts.New()
	irq.WriteIE(1 << interrupts.Joypad)
	s := New(irq)
	s.Write(0x20) // direction selected, nothing held
	s.Press(A)    // action button, currently not selected: no visible edge
	require.False(t, irq.HasPending())

	s.Write(0x10) // switch selector to the action group: A is now visible and held
	require.True(t, irq.HasPending())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := New(interrupts.New())
	s.Write(0x20)
	s.Press(Start)

	snap := s.Snapshot()
	restored := New(interrupts.New())
	restored.Restore(snap)
	require.Equal(t, s.Read(), restored.Read())
}
