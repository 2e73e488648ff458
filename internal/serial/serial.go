// Package serial emulates the Game Boy's serial port registers. Incoming
// traffic is not modeled (no link-cable emulation, per the Non-goals);
// outgoing bytes are buffered and handed to a side-channel sink when the
// control register requests a transfer.
package serial

import "github.com/dmgo-project/dmgo/internal/interrupts"

// Sink receives bytes written out over the serial port, one per
// completed transfer. The host may log them, feed a test-ROM harness
// (blargg-style ROMs report pass/fail over serial), or discard them.
type Sink func(b byte)

// Controller implements the SB/SC register pair.
type Controller struct {
	data    uint8
	control uint8
	irq     *interrupts.Service
	sink    Sink
}

// New returns a serial controller with no sink attached.
func New(irq *interrupts.Service) *Controller {
	return &Controller{control: 0x7E, irq: irq}
}

// SetSink installs the byte sink used for completed transfers.
func (c *Controller) SetSink(sink Sink) {
	c.sink = sink
}

// ReadSB returns the data register.
func (c *Controller) ReadSB() uint8 {
	return c.data
}

// WriteSB buffers a byte for the next transfer.
func (c *Controller) WriteSB(v uint8) {
	c.data = v
}

// ReadSC returns the control register.
func (c *Controller) ReadSC() uint8 {
	return c.control | 0x7C
}

// WriteSC starts (or requests) a transfer when bit 7 is set. Since no
// external device is modeled, the transfer always completes immediately:
// the buffered byte is emitted to the sink and the serial interrupt is
// requested, matching the observable behavior of an unconnected link
// port on real hardware test ROMs that poll for completion.
func (c *Controller) WriteSC(v uint8) {
	c.control = v & 0x83
	if v&0x80 != 0 {
		if c.sink != nil {
			c.sink(c.data)
		}
		c.control &^= 0x80
		c.irq.Request(interrupts.Serial)
	}
}

// Snapshot is the JSON-serializable state of the serial controller.
type Snapshot struct {
	Data    uint8 `json:"data"`
	Control uint8 `json:"control"`
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{Data: c.data, Control: c.control}
}

func (c *Controller) Restore(raw Snapshot) {
	c.data = raw.Data
	c.control = raw.Control
}
