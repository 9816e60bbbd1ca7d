// Package drv2605 provides a minimal TinyGo driver for the TI DRV2605 haptic
// motor driver.
//
// Every transaction is a register address byte followed by data bytes on
// write. Reads are a bare address write followed by a separate read, so the
// bus does not need repeated-start support.
//
// Configure applies the start-up register sequence once; TriggerEffect loads
// the sequencer and sets GO. Playback is fire-and-forget: the driver never
// waits for GO to self-clear unless the caller asks via Playing.
package drv2605

import (
	"errors"

	"hapticlink/errcode"

	"tinygo.org/x/drivers"
)

var ErrSlot = errors.New("drv2605: waveform slot out of range")

// Mode is the MODE register operating mode (bits 2:0).
type Mode uint8

const (
	ModeInternalTrigger Mode = 0x00
	ModeExtTriggerEdge  Mode = 0x01
	ModeExtTriggerLevel Mode = 0x02
	ModePWMAnalog       Mode = 0x03
	ModeAudioVibe       Mode = 0x04
	ModeRealtime        Mode = 0x05
	ModeDiagnostics     Mode = 0x06
	ModeAutoCal         Mode = 0x07
)

// Config holds start-up values. Zero fields take defaults.
type Config struct {
	// BrakeTime is written to BRAKE after it is cleared. Default 0x64.
	BrakeTime uint8
	// Library is the effect library selected last. Default 1.
	Library uint8
}

// Diag holds the values read back during Configure.
type Diag struct {
	Status   byte
	Feedback byte
	Control3 byte
}

type Device struct {
	i2c  drivers.I2C
	addr uint16
	diag Diag

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [1]byte
}

func New(i2c drivers.I2C) *Device {
	return &Device{i2c: i2c, addr: Address}
}

// Configure runs the start-up sequence. The first failing transaction aborts
// it; registers already written are left as they are.
func (d *Device) Configure(cfgs ...Config) error {
	cfg := Config{BrakeTime: 0x64, Library: 1}
	if len(cfgs) > 0 {
		if cfgs[0].BrakeTime != 0 {
			cfg.BrakeTime = cfgs[0].BrakeTime
		}
		if cfgs[0].Library != 0 {
			cfg.Library = cfgs[0].Library
		}
	}

	st, err := d.readReg(regStatus)
	if err != nil {
		return err
	}
	d.diag.Status = st

	steps := [...]struct {
		reg byte
		val byte
	}{
		{regMode, 0x00},
		{regRTPIn, 0x00},
		{regWaveSeq1, 0x01}, // default click
		{regWaveSeq2, 0x00},
		{regOverdrive, 0x00},
		{regSustainPos, 0x00},
		{regSustainNeg, 0x00},
		{regBrake, 0x00},
		{regBrake, cfg.BrakeTime},
	}
	for _, s := range steps {
		if err := d.writeReg(s.reg, s.val); err != nil {
			return err
		}
	}

	fb, err := d.readReg(regFeedback)
	if err != nil {
		return err
	}
	d.diag.Feedback = fb
	if err := d.writeReg(regFeedback, fb&^feedbackLRA); err != nil {
		return err
	}

	c3, err := d.readReg(regControl3)
	if err != nil {
		return err
	}
	d.diag.Control3 = c3
	if err := d.writeReg(regControl3, c3|control3ERMOpen); err != nil {
		return err
	}

	if err := d.writeReg(regMode, 0x00); err != nil {
		return err
	}
	return d.writeReg(regLibrary, cfg.Library)
}

// Diag returns the values read during the last Configure.
func (d *Device) Diag() Diag { return d.diag }

// TriggerEffect plays effect id from the selected library: slot 1 = id,
// slot 2 = 0 (end of sequence), then GO.
func (d *Device) TriggerEffect(id uint8) error {
	if err := d.writeReg(regWaveSeq1, id); err != nil {
		return err
	}
	if err := d.writeReg(regWaveSeq2, 0); err != nil {
		return err
	}
	return d.writeReg(regGo, goBit)
}

// Status reads the STATUS register.
func (d *Device) Status() (byte, error) { return d.readReg(regStatus) }

// SetMode writes the operating mode and clears standby.
func (d *Device) SetMode(m Mode) error { return d.writeReg(regMode, byte(m)&0x07) }

// Standby puts the device in software standby.
func (d *Device) Standby() error { return d.writeReg(regMode, modeStandby) }

// SetRealtimeValue writes the real-time playback input (used in ModeRealtime).
func (d *Device) SetRealtimeValue(v uint8) error { return d.writeReg(regRTPIn, v) }

// SelectLibrary selects the effect library (1-5 ERM, 6 LRA).
func (d *Device) SelectLibrary(lib uint8) error { return d.writeReg(regLibrary, lib&0x07) }

// SetWaveform sets sequencer slot (0-based) to effect id. An id of 0 ends the sequence.
func (d *Device) SetWaveform(slot int, id uint8) error {
	if slot < 0 || slot >= WaveSlots {
		return ErrSlot
	}
	return d.writeReg(regWaveSeq1+byte(slot), id)
}

// Go starts playback of the loaded sequence.
func (d *Device) Go() error { return d.writeReg(regGo, goBit) }

// Stop cancels playback.
func (d *Device) Stop() error { return d.writeReg(regGo, 0) }

// Playing reports whether GO is still set, i.e. the last sequence has not finished.
func (d *Device) Playing() (bool, error) {
	v, err := d.readReg(regGo)
	if err != nil {
		return false, err
	}
	return v&goBit != 0, nil
}

// UseERM selects an eccentric rotating mass actuator.
func (d *Device) UseERM() error { return d.modifyReg(regFeedback, 0, feedbackLRA) }

// UseLRA selects a linear resonant actuator.
func (d *Device) UseLRA() error { return d.modifyReg(regFeedback, feedbackLRA, 0) }

// ---------------- Register access ----------------

func (d *Device) modifyReg(reg, set, clear byte) error {
	v, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, (v|set)&^clear)
}

func (d *Device) readReg(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], nil); err != nil {
		return 0, errcode.Wrap(errcode.BusError, "select "+RegisterName(reg), err)
	}
	if err := d.i2c.Tx(d.addr, nil, d.r[:1]); err != nil {
		return 0, errcode.Wrap(errcode.BusError, "read "+RegisterName(reg), err)
	}
	return d.r[0], nil
}

func (d *Device) writeReg(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	if err := d.i2c.Tx(d.addr, d.w[:2], nil); err != nil {
		return errcode.Wrap(errcode.BusError, "write "+RegisterName(reg), err)
	}
	return nil
}
