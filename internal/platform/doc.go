// Package platform binds the firmware services to real hardware: the BLE
// stack through tinygo.org/x/bluetooth, the haptic driver's I²C bus, and the
// status LED. MCU builds use the machine package; Linux builds use i2c-dev
// and BlueZ.
package platform
