package imageinfo

import "encoding/binary"

const (
	bmpFileHeaderLen = 14
	bmpBitfields     = 3
)

// probeBMP reads the DIB header for bit depth and pixels per metre. OS/2 core
// headers carry no resolution.
func probeBMP(data []byte, info *Info) {
	if len(data) < bmpFileHeaderLen+4 || data[0] != 'B' || data[1] != 'M' {
		return
	}

	dib := data[bmpFileHeaderLen:]
	headerLen := int(binary.LittleEndian.Uint32(dib[0:4]))
	if headerLen > len(dib) {
		return
	}

	if headerLen == 12 {
		if len(dib) >= 12 {
			info.Mode = bmpMode(binary.LittleEndian.Uint16(dib[10:12]), false)
		}
		return
	}
	if headerLen < 40 {
		return
	}

	bitCount := binary.LittleEndian.Uint16(dib[14:16])
	compression := binary.LittleEndian.Uint32(dib[16:20])
	hasAlpha := compression == bmpBitfields && headerLen >= 56 && binary.LittleEndian.Uint32(dib[52:56]) != 0
	info.Mode = bmpMode(bitCount, hasAlpha)

	ppmX := int32(binary.LittleEndian.Uint32(dib[24:28]))
	ppmY := int32(binary.LittleEndian.Uint32(dib[28:32]))
	info.set(KeyDPI, [2]float64{wholeDPI(float64(ppmX)), wholeDPI(float64(ppmY))})
}

func bmpMode(bitCount uint16, hasAlpha bool) string {
	switch {
	case bitCount == 1:
		return "1"
	case bitCount <= 8:
		return "P"
	case bitCount == 32 && hasAlpha:
		return "RGBA"
	default:
		return "RGB"
	}
}
