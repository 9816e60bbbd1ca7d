//go:build tinygo

package logx

import "hapticlink/x/conv"

func setBackendLevel(Level) {}

var levelTag = [...]string{"D", "I", "W", "E"}

// write prints "[comp] L msg k=v ..." using the runtime print builtins so
// fmt stays out of the firmware image.
func write(l Level, comp, msg string, kv []any) {
	var buf [24]byte
	print("[", comp, "] ", levelTag[l], " ", msg)
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		print(" ", k, "=")
		switch v := kv[i+1].(type) {
		case string:
			print(v)
		case bool:
			print(v)
		case int:
			print(string(conv.Itoa(buf[:], int64(v))))
		case int16:
			print(string(conv.Itoa(buf[:], int64(v))))
		case int64:
			print(string(conv.Itoa(buf[:], v)))
		case uint8:
			print("0x", string(conv.U8Hex(buf[:], v)))
		case uint16:
			print("0x", string(conv.U16Hex(buf[:], v)))
		case uint32:
			print(string(conv.Utoa(buf[:], uint64(v))))
		case error:
			print(v.Error())
		case interface{ String() string }:
			print(v.String())
		default:
			print("?")
		}
	}
	println()
}
