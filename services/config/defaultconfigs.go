package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name (the value passed to Load)
// Val: YAML document for that board; omitted fields take Default() values
// -----------------------------------------------------------------------------

const cfgNRF52840 = `
board: nrf52840
log_level: info
boot_delay: 10s
tick: 1s
scan:
  interval: 500ms
  window: 400ms
central:
  target_uuid: 0xa001
  range_start: 0xa000
  range_end: 0xa001
haptic:
  effect: 1
  brake_time: 0x64
  library: 1
`

const cfgHost = `
board: host
log_level: debug
boot_delay: 0s
tick: 1s
host:
  i2c_device: /dev/i2c-1
  redis_key: hapticlink
`

var embeddedConfigs = map[string][]byte{
	"nrf52840": []byte(cfgNRF52840),
	"host":     []byte(cfgHost),
}
