package gameboy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmgo-project/dmgo/internal/cartridge"
	"github.com/stretchr/testify/require"
)

func infiniteLoopROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x18 // JR -2
	rom[0x0101] = 0xFE
	return rom
}

func TestRunFrameAdvancesUntilFrameReady(t *testing.T) {
	gb, err := New(infiniteLoopROM(), "")
	require.NoError(t, err)

	frame, err := gb.RunFrame(Input{})
	require.NoError(t, err)
	require.NotNil(t, frame)
	require.False(t, gb.PPU.FrameReady) // TakeFrame cleared the latch
}

func TestIllegalOpcodeReturnsError(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0xD3 // disallowed opcode
	gb, err := New(rom, "")
	require.NoError(t, err)

	_, err = gb.RunFrame(Input{})
	require.ErrorIs(t, err, ErrIllegalOpcode)
}

func TestModelAutoDetectsCGBFlag(t *testing.T) {
	rom := infiniteLoopROM()
	rom[0x143] = 0x80
	gb, err := New(rom, "")
	require.NoError(t, err)
	require.Equal(t, ModelCGB, gb.Model)
}

func TestAsModelOverridesHeader(t *testing.T) {
	rom := infiniteLoopROM()
	rom[0x143] = 0x80
	gb, err := New(rom, "", AsModel(ModelDMG))
	require.NoError(t, err)
	require.Equal(t, ModelDMG, gb.Model)
}

func TestSaveStateLoadStateRoundTrip(t *testing.T) {
	rom := infiniteLoopROM()
	src, err := New(rom, "")
	require.NoError(t, err)
	src.MMU.Write(0xC000, 0x7A)

	blob, err := src.SaveState()
	require.NoError(t, err)

	dst, err := New(rom, "")
	require.NoError(t, err)
	require.NoError(t, dst.LoadState(blob))
	require.Equal(t, uint8(0x7A), dst.MMU.Read(0xC000))
}

func TestRewindPushAndPop(t *testing.T) {
	gb, err := New(infiniteLoopROM(), "", WithRewindDepth(2))
	require.NoError(t, err)

	gb.MMU.Write(0xC000, 0x11)
	require.NoError(t, gb.PushRewind())
	gb.MMU.Write(0xC000, 0x22)

	ok, err := gb.Rewind()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint8(0x11), gb.MMU.Read(0xC000))
}

func TestRewindPopOnEmptyBufferReportsFalse(t *testing.T) {
	gb, err := New(infiniteLoopROM(), "") // rewind disabled by default
	require.NoError(t, err)
	ok, err := gb.Rewind()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOptionsConfigureMuteAndLayerHiding(t *testing.T) {
	gb, err := New(infiniteLoopROM(), "", Mute(), MuteChannel(0), HideBackground())
	require.NoError(t, err)
	require.True(t, gb.APU.MasterMute)
	require.True(t, gb.APU.ChannelMute[0])
	require.True(t, gb.PPU.HideBackground)
}

func TestResetRebuildsComponentsAndPreservesCartridge(t *testing.T) {
	gb, err := New(infiniteLoopROM(), "")
	require.NoError(t, err)
	cart := gb.Cartridge
	_, err = gb.RunFrame(Input{})
	require.NoError(t, err)

	gb.Reset()
	require.Same(t, cart, gb.Cartridge)
	require.Equal(t, uint16(0x0100), gb.CPU.PC)
	require.False(t, gb.PPU.FrameReady)
}

func TestCloseFlushesBatteryRAM(t *testing.T) {
	dir := t.TempDir()
	romPath := filepath.Join(dir, "game.gb")

	rom := infiniteLoopROM()
	rom[0x147] = byte(cartridge.TypeMBC1RAMBattery)
	rom[0x149] = 0x02 // 8 KiB RAM

	gb, err := New(rom, romPath)
	require.NoError(t, err)
	gb.Close()

	_, statErr := os.Stat(romPath[:len(romPath)-len(filepath.Ext(romPath))] + ".sav")
	require.NoError(t, statErr)
}
