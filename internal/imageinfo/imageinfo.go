// Package imageinfo identifies an uploaded image and reads the metadata its
// container carries: dimensions, mode, resolution and, for PNG, the ancillary
// chunks. Pixel data is never decoded.
package imageinfo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrDecode is returned when the bytes are not an image any registered decoder
// recognises.
var ErrDecode = errors.New("cannot identify image file")

const (
	FormatPNG  = "PNG"
	FormatJPEG = "JPEG"
	FormatGIF  = "GIF"
	FormatBMP  = "BMP"
	FormatTIFF = "TIFF"
)

// Keys used in Info.Meta. PNG text chunks are stored under their own keyword.
const (
	KeyDPI          = "dpi"
	KeyGamma        = "gamma"
	KeyTransparency = "transparency"
	KeyICCProfile   = "icc_profile"
	KeyEXIF         = "exif"
)

// Info is what the decoder reports about an image.
type Info struct {
	Width  int
	Height int
	Format string
	Mode   string

	// Meta holds decoder-reported metadata. Keys are only present when the
	// container carries the corresponding field.
	Meta map[string]any
}

func (i *Info) set(key string, value any) {
	if i.Meta == nil {
		i.Meta = make(map[string]any)
	}
	i.Meta[key] = value
}

// DPI returns the resolution pair when the container declares one.
func (i *Info) DPI() (x, y float64, ok bool) {
	dpi, ok := i.Meta[KeyDPI].([2]float64)
	if !ok {
		return 0, 0, false
	}
	return dpi[0], dpi[1], true
}

// Decode identifies data and collects its metadata. Only a failure to identify
// the image is an error; a metadata field that cannot be parsed is left out.
func Decode(data []byte) (*Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	info := &Info{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: strings.ToUpper(format),
		Mode:   modeOf(cfg.ColorModel),
	}

	switch info.Format {
	case FormatPNG:
		probePNG(data, info)
	case FormatJPEG:
		probeJPEG(data, info)
	case FormatGIF:
		info.Mode = "P"
	case FormatBMP:
		probeBMP(data, info)
	case FormatTIFF:
		probeTIFF(data, info)
	}

	return info, nil
}

// modeOf maps a colour model to the mode names image tooling commonly reports.
func modeOf(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}

	switch m {
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.CMYKModel:
		return "CMYK"
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model:
		return "RGBA"
	default:
		return "RGB"
	}
}

// wholeDPI converts a dots-per-metre density to dots per inch.
func wholeDPI(perMetre float64) float64 {
	return math.Round(perMetre * 0.0254)
}
