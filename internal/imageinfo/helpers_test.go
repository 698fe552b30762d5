package imageinfo

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sort"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

func opaqueImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// pngChunk frames data as a PNG chunk with a valid CRC.
func pngChunk(typ string, data []byte) []byte {
	out := make([]byte, 8, 12+len(data))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(data)))
	copy(out[4:8], typ)
	out = append(out, data...)

	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	return binary.BigEndian.AppendUint32(out, crc.Sum32())
}

// withPNGChunks splices chunks in directly after IHDR.
func withPNGChunks(t *testing.T, encoded []byte, chunks ...[]byte) []byte {
	t.Helper()
	const afterIHDR = 8 + 12 + 13
	require.Greater(t, len(encoded), afterIHDR)
	require.Equal(t, "IHDR", string(encoded[12:16]))

	out := append([]byte{}, encoded[:afterIHDR]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return append(out, encoded[afterIHDR:]...)
}

// buildPNG assembles a chunk stream without pixel data, enough for the probe.
func buildPNG(bitDepth, colorType byte, chunks ...[]byte) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 4)
	binary.BigEndian.PutUint32(ihdr[4:8], 4)
	ihdr[8] = bitDepth
	ihdr[9] = colorType

	out := append([]byte{}, pngSignature...)
	out = append(out, pngChunk("IHDR", ihdr)...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return append(out, pngChunk("IEND", nil)...)
}

func physChunk(ppmX, ppmY uint32, unit byte) []byte {
	data := make([]byte, 9)
	binary.BigEndian.PutUint32(data[0:4], ppmX)
	binary.BigEndian.PutUint32(data[4:8], ppmY)
	data[8] = unit
	return pngChunk("pHYs", data)
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func jpegSegment(marker byte, payload []byte) []byte {
	out := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(out[2:4], uint16(len(payload)+2))
	return append(out, payload...)
}

// withJPEGSegments inserts segments directly after SOI.
func withJPEGSegments(encoded []byte, segments ...[]byte) []byte {
	out := append([]byte{}, encoded[:2]...)
	for _, s := range segments {
		out = append(out, s...)
	}
	return append(out, encoded[2:]...)
}

func jfifPayload(unit byte, x, y uint16) []byte {
	p := []byte("JFIF\x00")
	p = append(p, 1, 2, unit)
	p = binary.BigEndian.AppendUint16(p, x)
	p = binary.BigEndian.AppendUint16(p, y)
	return append(p, 0, 0)
}

type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

func shortEntry(tag, v uint16) tiffEntry {
	return tiffEntry{tag: tag, typ: typeShort, count: 1, value: binary.LittleEndian.AppendUint16(nil, v)}
}

func rationalEntry(tag uint16, num, den uint32) tiffEntry {
	v := binary.LittleEndian.AppendUint32(nil, num)
	return tiffEntry{tag: tag, typ: typeRational, count: 1, value: binary.LittleEndian.AppendUint32(v, den)}
}

// buildTIFF lays out a little-endian header, IFD0 and out-of-line values.
func buildTIFF(entries ...tiffEntry) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	const ifdOffset = 8
	extra := ifdOffset + 2 + 12*len(entries) + 4

	out := []byte("II")
	out = binary.LittleEndian.AppendUint16(out, 42)
	out = binary.LittleEndian.AppendUint32(out, ifdOffset)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(entries)))

	var tail []byte
	for _, e := range entries {
		out = binary.LittleEndian.AppendUint16(out, e.tag)
		out = binary.LittleEndian.AppendUint16(out, e.typ)
		out = binary.LittleEndian.AppendUint32(out, e.count)
		if len(e.value) <= 4 {
			field := make([]byte, 4)
			copy(field, e.value)
			out = append(out, field...)
			continue
		}
		out = binary.LittleEndian.AppendUint32(out, uint32(extra+len(tail)))
		tail = append(tail, e.value...)
	}
	out = binary.LittleEndian.AppendUint32(out, 0)
	return append(out, tail...)
}

// buildBMPHeader returns file + BITMAPINFOHEADER fields only.
func buildBMPHeader(bitCount uint16, ppmX, ppmY int32) []byte {
	out := []byte("BM")
	out = append(out, make([]byte, 12)...)
	dib := make([]byte, 40)
	binary.LittleEndian.PutUint32(dib[0:4], 40)
	binary.LittleEndian.PutUint32(dib[4:8], 16)
	binary.LittleEndian.PutUint32(dib[8:12], 16)
	binary.LittleEndian.PutUint16(dib[12:14], 1)
	binary.LittleEndian.PutUint16(dib[14:16], bitCount)
	binary.LittleEndian.PutUint32(dib[24:28], uint32(ppmX))
	binary.LittleEndian.PutUint32(dib[28:32], uint32(ppmY))
	return append(out, dib...)
}

func palettedWithTransparentEntry() *image.Paletted {
	return image.NewPaletted(image.Rect(0, 0, 8, 8), color.Palette{
		color.NRGBA{A: 0},
		color.NRGBA{R: 255, A: 255},
	})
}
