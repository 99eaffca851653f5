package core

// appendUint appends the decimal form of n to dst without going through fmt,
// which keeps formatting out of the firmware's hot paths
func appendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	pos := len(buf)
	for {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(dst, buf[pos:]...)
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	return string(appendUint(nil, uint64(n)))
}

// u64toa converts a 64-bit unsigned integer to a string
func u64toa(n uint64) string {
	return string(appendUint(nil, n))
}
