// Package timex holds the firmware's timestamp helper.
package timex

import "time"

// NowMs returns Unix milliseconds. Telemetry payloads carry it as ts_ms.
func NowMs() int64 { return time.Now().UnixMilli() }
