package conv

const hexd = "0123456789ABCDEF"

// U8Hex writes a byte as two uppercase hex digits.
func U8Hex(buf []byte, b byte) []byte {
	if len(buf) < 2 {
		return buf[:0]
	}
	buf[0] = hexd[b>>4]
	buf[1] = hexd[b&0xF]
	return buf[:2]
}

// U16Hex writes 4-digit uppercase hex without 0x, zero-padded.
func U16Hex(buf []byte, n uint16) []byte {
	if len(buf) < 4 {
		return buf[:0]
	}
	U8Hex(buf[0:2], byte(n>>8))
	U8Hex(buf[2:4], byte(n))
	return buf[:4]
}
