package mathx

// ScaleU16 returns x*num/den with 32-bit intermediates, saturating at 65535.
// den == 0 yields x unchanged.
func ScaleU16(x uint16, num, den uint16) uint16 {
	if den == 0 {
		return x
	}
	v := uint32(x) * uint32(num) / uint32(den)
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}
