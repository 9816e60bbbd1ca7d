package conv

// Utoa formats n in base 10 into the tail of buf and returns that tail.
// A 20-byte buf holds any uint64; shorter buffers keep the low digits.
func Utoa(buf []byte, n uint64) []byte {
	i := len(buf)
	for i > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return buf[i:]
}

// Itoa is Utoa for signed values. buf needs 20 bytes for any int64.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	// -n wraps for MinInt64 but its uint64 conversion is still the magnitude.
	d := Utoa(buf, uint64(-n))
	start := len(buf) - len(d)
	if start == 0 {
		return d
	}
	buf[start-1] = '-'
	return buf[start-1:]
}
