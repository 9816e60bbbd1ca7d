package types

// Retained telemetry payloads published on the internal bus.

type CentralState struct {
	State  string `json:"state" yaml:"state"`
	Handle Handle `json:"handle" yaml:"handle"`
	TSms   int64  `json:"ts_ms" yaml:"ts_ms"`
}

type HapticState struct {
	Ready   bool   `json:"ready" yaml:"ready"`
	Effects uint32 `json:"effects" yaml:"effects"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	TSms    int64  `json:"ts_ms" yaml:"ts_ms"`
}

type ToggleEvent struct {
	Handle Handle `json:"handle"`
	From   byte   `json:"from"`
	To     byte   `json:"to"`
}

type EffectEvent struct {
	Effect uint8 `json:"effect"`
	TSms   int64 `json:"ts_ms"`
}
