package imageinfo

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeBMP(t *testing.T) {
	tests := []struct {
		name     string
		bitCount uint16
		ppm      int32
		mode     string
		dpi      float64
	}{
		{"24 bit at 96 dpi", 24, 3780, "RGB", 96},
		{"8 bit paletted", 8, 2835, "P", 72},
		{"monochrome", 1, 11811, "1", 300},
		{"no resolution", 24, 0, "RGB", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := &Info{}
			probeBMP(buildBMPHeader(tt.bitCount, tt.ppm, tt.ppm), info)

			assert.Equal(t, tt.mode, info.Mode)
			x, y, ok := info.DPI()
			require.True(t, ok)
			assert.Equal(t, tt.dpi, x)
			assert.Equal(t, tt.dpi, y)
		})
	}
}

func TestProbeBMP_AlphaBitfields(t *testing.T) {
	data := []byte("BM")
	data = append(data, make([]byte, 12)...)
	dib := make([]byte, 56)
	binary.LittleEndian.PutUint32(dib[0:4], 56)
	binary.LittleEndian.PutUint16(dib[14:16], 32)
	binary.LittleEndian.PutUint32(dib[16:20], bmpBitfields)
	binary.LittleEndian.PutUint32(dib[52:56], 0xFF000000)
	data = append(data, dib...)

	info := &Info{}
	probeBMP(data, info)

	assert.Equal(t, "RGBA", info.Mode)
}

func TestProbeBMP_CoreHeader(t *testing.T) {
	data := []byte("BM")
	data = append(data, make([]byte, 12)...)
	dib := make([]byte, 12)
	binary.LittleEndian.PutUint32(dib[0:4], 12)
	binary.LittleEndian.PutUint16(dib[10:12], 8)
	data = append(data, dib...)

	info := &Info{}
	probeBMP(data, info)

	assert.Equal(t, "P", info.Mode)
	assert.NotContains(t, info.Meta, KeyDPI)
}

func TestProbeBMP_Truncated(t *testing.T) {
	data := buildBMPHeader(24, 3780, 3780)[:30]

	info := &Info{}
	assert.NotPanics(t, func() { probeBMP(data, info) })
	assert.Nil(t, info.Meta)
}
