package imageinfo

import (
	"encoding/binary"
	"errors"
)

// TIFF tags read from IFD0.
const (
	tagBitsPerSample   = 0x0102
	tagPhotometric     = 0x0106
	tagSamplesPerPixel = 0x0115
	tagXResolution     = 0x011A
	tagYResolution     = 0x011B
	tagResolutionUnit  = 0x0128
)

const (
	typeByte     = 1
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

var errBadTIFF = errors.New("malformed TIFF structure")

type ifdEntry struct {
	typ   uint16
	count uint32
	value []byte
}

// ifd is the first image file directory of a TIFF stream, which is also the
// layout of an EXIF payload.
type ifd struct {
	order   binary.ByteOrder
	entries map[uint16]ifdEntry
}

func typeSize(typ uint16) int {
	switch typ {
	case 1, 2, 6, 7:
		return 1
	case 3, 8:
		return 2
	case 4, 9, 11:
		return 4
	case 5, 10, 12:
		return 8
	default:
		return 0
	}
}

func parseIFD0(data []byte) (*ifd, error) {
	if len(data) < 8 {
		return nil, errBadTIFF
	}

	var order binary.ByteOrder
	switch string(data[0:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, errBadTIFF
	}
	if order.Uint16(data[2:4]) != 42 {
		return nil, errBadTIFF
	}

	offset := int(order.Uint32(data[4:8]))
	if offset < 8 || offset+2 > len(data) {
		return nil, errBadTIFF
	}

	n := int(order.Uint16(data[offset : offset+2]))
	d := &ifd{order: order, entries: make(map[uint16]ifdEntry, n)}
	for i := range n {
		e := offset + 2 + i*12
		if e+12 > len(data) {
			break
		}

		tag := order.Uint16(data[e : e+2])
		typ := order.Uint16(data[e+2 : e+4])
		count := order.Uint32(data[e+4 : e+8])
		size := typeSize(typ) * int(count)
		if size <= 0 {
			continue
		}

		var value []byte
		if size <= 4 {
			value = data[e+8 : e+8+size]
		} else {
			at := int(order.Uint32(data[e+8 : e+12]))
			if at < 0 || at+size > len(data) {
				continue
			}
			value = data[at : at+size]
		}
		d.entries[tag] = ifdEntry{typ: typ, count: count, value: value}
	}

	return d, nil
}

// uint returns the first value of a BYTE, SHORT or LONG entry.
func (d *ifd) uint(tag uint16) (uint32, bool) {
	e, ok := d.entries[tag]
	if !ok {
		return 0, false
	}
	switch e.typ {
	case typeByte:
		return uint32(e.value[0]), true
	case typeShort:
		return uint32(d.order.Uint16(e.value)), true
	case typeLong:
		return d.order.Uint32(e.value), true
	default:
		return 0, false
	}
}

func (d *ifd) rational(tag uint16) (float64, bool) {
	e, ok := d.entries[tag]
	if !ok || e.typ != typeRational {
		return 0, false
	}
	num := d.order.Uint32(e.value[0:4])
	den := d.order.Uint32(e.value[4:8])
	if den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

// resolution reports X/YResolution in dots per inch. A missing unit means
// inches; unit 3 is centimetres; unit 1 declares no absolute unit.
func (d *ifd) resolution() ([2]float64, bool) {
	x, okX := d.rational(tagXResolution)
	y, okY := d.rational(tagYResolution)
	if !okX || !okY {
		return [2]float64{}, false
	}

	unit, ok := d.uint(tagResolutionUnit)
	switch {
	case !ok || unit == 2:
		return [2]float64{x, y}, true
	case unit == 3:
		return [2]float64{x * 2.54, y * 2.54}, true
	default:
		return [2]float64{}, false
	}
}

func (d *ifd) mode() string {
	photometric, ok := d.uint(tagPhotometric)
	if !ok {
		return ""
	}
	bits, _ := d.uint(tagBitsPerSample)
	samples, ok := d.uint(tagSamplesPerPixel)
	if !ok {
		samples = 1
	}

	switch photometric {
	case 0, 1:
		switch {
		case bits == 1:
			return "1"
		case bits == 16:
			return "I;16"
		case samples == 2:
			return "LA"
		default:
			return "L"
		}
	case 2:
		if samples >= 4 {
			return "RGBA"
		}
		return "RGB"
	case 3:
		return "P"
	case 5:
		return "CMYK"
	default:
		return ""
	}
}

func probeTIFF(data []byte, info *Info) {
	d, err := parseIFD0(data)
	if err != nil {
		return
	}
	if mode := d.mode(); mode != "" {
		info.Mode = mode
	}
	if dpi, ok := d.resolution(); ok {
		info.set(KeyDPI, dpi)
	}
}
