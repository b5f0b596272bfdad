package audio

import "encoding/binary"

// Level returns mean(|sample|)/32768 over a little-endian s16 chunk, clamped to [0, 1].
func Level(chunk []byte) float64 {
	n := len(chunk) / bytesPerSample
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(chunk[i*bytesPerSample:]))
		if s < 0 {
			sum -= float64(s)
		} else {
			sum += float64(s)
		}
	}

	level := sum / float64(n) / 32768.0
	if level > 1 {
		return 1
	}
	return level
}
