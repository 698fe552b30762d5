package imageinfo

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// maxInflate bounds every decompressed chunk (ICC profiles, zTXt, iTXt).
const maxInflate = 16 << 20

// probePNG walks the chunk list up to IEND and records IHDR mode, pHYs, gAMA,
// tRNS, iCCP, eXIf and text chunks.
func probePNG(data []byte, info *Info) {
	if len(data) < len(pngSignature) || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return
	}

	colorType := -1
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		chunkType := string(data[pos+4 : pos+8])
		start := pos + 8
		end := start + length
		if length < 0 || end > len(data) {
			return
		}
		chunk := data[start:end]
		// data + 4 byte CRC, which is not verified
		pos = end + 4

		switch chunkType {
		case "IHDR":
			if len(chunk) >= 13 {
				colorType = int(chunk[9])
				info.Mode = pngMode(chunk[8], chunk[9])
			}
		case "pHYs":
			if len(chunk) == 9 && chunk[8] == 1 {
				px := float64(binary.BigEndian.Uint32(chunk[0:4]))
				py := float64(binary.BigEndian.Uint32(chunk[4:8]))
				info.set(KeyDPI, [2]float64{wholeDPI(px), wholeDPI(py)})
			}
		case "gAMA":
			if len(chunk) == 4 {
				info.set(KeyGamma, float64(binary.BigEndian.Uint32(chunk))/100000.0)
			}
		case "tRNS":
			if t, ok := pngTransparency(chunk, colorType); ok {
				info.set(KeyTransparency, t)
			}
		case "iCCP":
			_, rest, ok := splitKeyword(chunk)
			if !ok || len(rest) < 1 || rest[0] != 0 {
				continue
			}
			if profile, err := inflate(rest[1:]); err == nil {
				info.set(KeyICCProfile, profile)
			}
		case "eXIf":
			exif := make([]byte, 0, len(chunk)+6)
			exif = append(exif, "Exif\x00\x00"...)
			info.set(KeyEXIF, append(exif, chunk...))
		case "tEXt":
			if key, text, ok := splitKeyword(chunk); ok {
				info.set(key, latin1(text))
			}
		case "zTXt":
			key, rest, ok := splitKeyword(chunk)
			if !ok || len(rest) < 1 || rest[0] != 0 {
				continue
			}
			if text, err := inflate(rest[1:]); err == nil {
				info.set(key, latin1(text))
			}
		case "iTXt":
			if key, text, ok := parseITXt(chunk); ok {
				info.set(key, text)
			}
		case "IEND":
			return
		}
	}
}

func pngMode(bitDepth, colorType byte) string {
	switch colorType {
	case 0:
		switch bitDepth {
		case 1:
			return "1"
		case 16:
			return "I;16"
		default:
			return "L"
		}
	case 2:
		return "RGB"
	case 3:
		return "P"
	case 4:
		return "LA"
	case 6:
		return "RGBA"
	default:
		return ""
	}
}

// pngTransparency interprets tRNS according to the colour type: a grey
// sample, an RGB triple, or per-palette-entry alpha. A palette whose alpha
// table is opaque except for one fully transparent entry collapses to that
// entry's index.
func pngTransparency(chunk []byte, colorType int) (any, bool) {
	switch colorType {
	case 0:
		if len(chunk) < 2 {
			return nil, false
		}
		return int(binary.BigEndian.Uint16(chunk[0:2])), true
	case 2:
		if len(chunk) < 6 {
			return nil, false
		}
		return [3]int{
			int(binary.BigEndian.Uint16(chunk[0:2])),
			int(binary.BigEndian.Uint16(chunk[2:4])),
			int(binary.BigEndian.Uint16(chunk[4:6])),
		}, true
	case 3:
		if idx, ok := singleTransparentEntry(chunk); ok {
			return idx, true
		}
		alpha := make([]int, len(chunk))
		for i, a := range chunk {
			alpha[i] = int(a)
		}
		return alpha, true
	default:
		return nil, false
	}
}

func singleTransparentEntry(alpha []byte) (int, bool) {
	idx := -1
	for i, a := range alpha {
		switch a {
		case 0xFF:
		case 0x00:
			if idx >= 0 {
				return 0, false
			}
			idx = i
		default:
			return 0, false
		}
	}
	return idx, idx >= 0
}

// splitKeyword splits a chunk at the NUL ending its keyword.
func splitKeyword(chunk []byte) (string, []byte, bool) {
	i := bytes.IndexByte(chunk, 0)
	if i <= 0 {
		return "", nil, false
	}
	return latin1(chunk[:i]), chunk[i+1:], true
}

// parseITXt decodes keyword, compression flag/method, language tag, translated
// keyword and UTF-8 text.
func parseITXt(chunk []byte) (string, string, bool) {
	key, rest, ok := splitKeyword(chunk)
	if !ok || len(rest) < 2 {
		return "", "", false
	}
	compressed, method := rest[0], rest[1]
	rest = rest[2:]

	for range 2 {
		i := bytes.IndexByte(rest, 0)
		if i < 0 {
			return "", "", false
		}
		rest = rest[i+1:]
	}

	if compressed == 1 {
		if method != 0 {
			return "", "", false
		}
		text, err := inflate(rest)
		if err != nil {
			return "", "", false
		}
		return key, string(text), true
	}
	return key, string(rest), true
}

func inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(io.LimitReader(zr, maxInflate))
}

func latin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
