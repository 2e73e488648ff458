package gameboy

import (
	"github.com/dmgo-project/dmgo/internal/ppu/palette"
	"github.com/sirupsen/logrus"
)

// config collects every Option before New constructs a single
// component, unlike the reference's GameBoyOpt, which mutates an
// already-built GameBoy (its WithBootROM even pokes already-allocated
// WRAM as a workaround). Model and boot-ROM presence decide whether the
// PPU/MMU run in CGB mode at all, so those must be known before
// construction rather than patched in afterward.
type config struct {
	model   Model
	bootROM []byte
	logger  logrus.FieldLogger
	palette palette.Monochrome

	muteChannels [4]bool
	muteMaster   bool

	hideBackground bool
	hideWindow     bool
	hideSprites    bool

	autosaveCycles uint32
	rewindDepth    int

	debug bool
}

func defaultConfig() config {
	return config{model: ModelAuto, palette: palette.Greyscale}
}

// Option configures a GameBoy at construction time.
type Option func(*config)

// WithBootROM supplies the boot ROM image (256 bytes for DMG, 2304 for
// CGB) to execute before the cartridge's own entry point, instead of
// starting directly at 0x0100.
func WithBootROM(rom []byte) Option {
	return func(c *config) { c.bootROM = rom }
}

// AsModel forces DMG or CGB emulation, overriding the cartridge header's
// own CGB-flag byte. ModelAuto (the default) detects from the header.
func AsModel(m Model) Option {
	return func(c *config) { c.model = m }
}

// WithLogger overrides the façade's default logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) { c.logger = log }
}

// WithPalette sets the DMG compatibility palette used to shade BGP/OBP0/
// OBP1 color indices. Has no visible effect in CGB mode, which always
// uses the cartridge-controlled BGR555 palette RAM.
func WithPalette(p palette.Monochrome) Option {
	return func(c *config) { c.palette = p }
}

// MuteChannel silences one APU channel (0-3), leaving the others and the
// master mix untouched.
func MuteChannel(ch int) Option {
	return func(c *config) {
		if ch >= 0 && ch < 4 {
			c.muteChannels[ch] = true
		}
	}
}

// Mute silences the entire APU master mix.
func Mute() Option {
	return func(c *config) { c.muteMaster = true }
}

// HideBackground, HideWindow and HideSprites disable one render layer
// for debugging, independent of the cartridge's own LCDC bits.
func HideBackground() Option { return func(c *config) { c.hideBackground = true } }
func HideWindow() Option     { return func(c *config) { c.hideWindow = true } }
func HideSprites() Option    { return func(c *config) { c.hideSprites = true } }

// WithAutosave flushes battery-backed cartridge RAM to disk every
// intervalCycles machine cycles (1048576 per second at 1x speed). 0 (the
// default) disables periodic autosave; Close always flushes once on
// exit regardless of this setting.
func WithAutosave(intervalCycles uint32) Option {
	return func(c *config) { c.autosaveCycles = intervalCycles }
}

// WithRewindDepth enables a ring buffer of up to depth save states for
// PushRewind/Rewind. 0 (the default) disables rewind entirely, making
// PushRewind a no-op.
func WithRewindDepth(depth int) Option {
	return func(c *config) { c.rewindDepth = depth }
}

// Debug arms the CPU's LD B,B software breakpoint, the convention
// mooneye's test ROMs use to signal "stop here and check registers".
func Debug() Option {
	return func(c *config) { c.debug = true }
}
