// Package drv2605 provides constants for register addresses and bitfields used
// in the operation of the TI DRV2605 haptic driver.
package drv2605

const (
	// 7-bit I2C address (fixed).
	Address = 0x5A

	// --- Register sub-addresses (8-bit registers) ---
	regStatus     = 0x00 // R    device id, diag, over-temp, over-current
	regMode       = 0x01 // R/W  standby (bit 6), mode (bits 2:0)
	regRTPIn      = 0x02 // R/W  real-time playback input
	regLibrary    = 0x03 // R/W  waveform library select (bits 2:0)
	regWaveSeq1   = 0x04 // R/W  waveform sequencer slot 1
	regWaveSeq2   = 0x05 // R/W  waveform sequencer slot 2
	regWaveSeq8   = 0x0B // R/W  waveform sequencer slot 8 (last)
	regGo         = 0x0C // R/W  bit 0 starts playback, self-clears
	regOverdrive  = 0x0D // R/W  overdrive time offset
	regSustainPos = 0x0E // R/W  sustain time offset, positive
	regSustainNeg = 0x0F // R/W  sustain time offset, negative
	regBrake      = 0x10 // R/W  brake time offset
	regAudioMax   = 0x13 // R/W  audio-to-vibe max input level
	regFeedback   = 0x1A // R/W  N_ERM_LRA (bit 7), brake factor, loop gain, BEMF gain
	regControl3   = 0x1D // R/W  NG_THRESH, ERM_OPEN_LOOP (bit 5), ...

	// --- Bitfields ---
	feedbackLRA     = 0x80 // FEEDBACK: 1 = LRA, 0 = ERM
	control3ERMOpen = 0x20 // CONTROL3: ERM open-loop drive
	goBit           = 0x01
	modeStandby     = 0x40

	// WaveSlots is the number of sequencer slots.
	WaveSlots = 8
)

// Register describes one entry of the device register map.
type Register struct {
	Addr byte
	Name string
	Desc string
}

// Registers is the register map used by this driver, in address order.
var Registers = []Register{
	{regStatus, "STATUS", "device id and diagnostic flags"},
	{regMode, "MODE", "operating mode and standby"},
	{regRTPIn, "RTPIN", "real-time playback input"},
	{regLibrary, "LIBRARY", "effect library select"},
	{regWaveSeq1, "WAVESEQ1", "waveform slot 1"},
	{regWaveSeq2, "WAVESEQ2", "waveform slot 2"},
	{0x06, "WAVESEQ3", "waveform slot 3"},
	{0x07, "WAVESEQ4", "waveform slot 4"},
	{0x08, "WAVESEQ5", "waveform slot 5"},
	{0x09, "WAVESEQ6", "waveform slot 6"},
	{0x0A, "WAVESEQ7", "waveform slot 7"},
	{regWaveSeq8, "WAVESEQ8", "waveform slot 8"},
	{regGo, "GO", "playback trigger"},
	{regOverdrive, "OVERDRIVE", "overdrive time offset"},
	{regSustainPos, "SUSTAINPOS", "positive sustain time offset"},
	{regSustainNeg, "SUSTAINNEG", "negative sustain time offset"},
	{regBrake, "BRAKE", "brake time offset"},
	{regAudioMax, "AUDIOMAX", "audio-to-vibe max level"},
	{regFeedback, "FEEDBACK", "actuator type and feedback loop"},
	{regControl3, "CONTROL3", "drive mode control"},
}

// RegisterName returns the symbolic name for addr, or "" if it is not in the map.
func RegisterName(addr byte) string {
	for _, r := range Registers {
		if r.Addr == addr {
			return r.Name
		}
	}
	return ""
}
