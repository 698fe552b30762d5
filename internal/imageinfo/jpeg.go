package imageinfo

import (
	"bytes"
	"encoding/binary"
	"sort"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1
	markerAPP2 = 0xE2
)

var (
	jfifIdent = []byte("JFIF\x00")
	exifIdent = []byte("Exif\x00\x00")
	iccIdent  = []byte("ICC_PROFILE\x00")
)

type iccChunk struct {
	seq  byte
	data []byte
}

// probeJPEG reads the marker segments before the first scan. Resolution comes
// from the JFIF density when it has an absolute unit, otherwise from the EXIF
// X/YResolution tags.
func probeJPEG(data []byte, info *Info) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return
	}

	var (
		jfifDPI  *[2]float64
		exif     []byte
		iccParts []iccChunk
	)

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			break
		}
		marker := data[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		if marker == markerEOI || marker == markerSOS {
			break
		}
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			pos += 2
			continue
		}

		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		end := pos + 2 + length
		if length < 2 || end > len(data) {
			break
		}
		segment := data[pos+4 : end]
		pos = end

		switch marker {
		case markerAPP0:
			if dpi, ok := jfifDensity(segment); ok && jfifDPI == nil {
				jfifDPI = &dpi
			}
		case markerAPP1:
			if exif == nil && bytes.HasPrefix(segment, exifIdent) {
				exif = segment
			}
		case markerAPP2:
			if bytes.HasPrefix(segment, iccIdent) && len(segment) >= len(iccIdent)+2 {
				iccParts = append(iccParts, iccChunk{
					seq:  segment[len(iccIdent)],
					data: segment[len(iccIdent)+2:],
				})
			}
		}
	}

	if exif != nil {
		info.set(KeyEXIF, exif)
	}
	if len(iccParts) > 0 {
		sort.SliceStable(iccParts, func(i, j int) bool { return iccParts[i].seq < iccParts[j].seq })
		var profile []byte
		for _, p := range iccParts {
			profile = append(profile, p.data...)
		}
		info.set(KeyICCProfile, profile)
	}

	switch {
	case jfifDPI != nil:
		info.set(KeyDPI, *jfifDPI)
	case exif != nil:
		if d, err := parseIFD0(exif[len(exifIdent):]); err == nil {
			if dpi, ok := d.resolution(); ok {
				info.set(KeyDPI, dpi)
			}
		}
	}
}

// jfifDensity reads the APP0 density fields. Unit 1 is dots per inch, unit 2
// dots per centimetre; unit 0 only states an aspect ratio.
func jfifDensity(segment []byte) ([2]float64, bool) {
	if len(segment) < 12 || !bytes.HasPrefix(segment, jfifIdent) {
		return [2]float64{}, false
	}

	unit := segment[7]
	x := float64(binary.BigEndian.Uint16(segment[8:10]))
	y := float64(binary.BigEndian.Uint16(segment[10:12]))

	switch unit {
	case 1:
		return [2]float64{x, y}, true
	case 2:
		return [2]float64{x * 2.54, y * 2.54}, true
	default:
		return [2]float64{}, false
	}
}
