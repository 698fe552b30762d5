package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ilkin0/metadata-api/internal/api/types"
	"github.com/ilkin0/metadata-api/internal/imageinfo"
)

const bytesPerMB = 1024 * 1024

// ErrInvalidExtension is returned for filenames outside the accepted image types.
var ErrInvalidExtension = errors.New("invalid file type")

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"tiff": true,
}

type DecodeFunc func(data []byte) (*imageinfo.Info, error)

type MetadataService struct {
	decode DecodeFunc
}

func NewMetadataService() *MetadataService {
	return &MetadataService{decode: imageinfo.Decode}
}

// NewMetadataServiceWithDecoder swaps the decoding collaborator.
func NewMetadataServiceWithDecoder(decode DecodeFunc) *MetadataService {
	return &MetadataService{decode: decode}
}

// ValidateFilename checks the extension only; the content is not inspected.
func (s *MetadataService) ValidateFilename(filename string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w %q. Supported formats: PNG, JPG, JPEG, GIF, BMP, TIFF", ErrInvalidExtension, filename)
	}
	return nil
}

func (s *MetadataService) ExtractMetadata(ctx context.Context, filename string, data []byte) (*types.MetadataResponse, error) {
	if err := s.ValidateFilename(filename); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.decode(data)
	if err != nil {
		return nil, err
	}

	resp := &types.MetadataResponse{
		Filename:      filename,
		Format:        info.Format,
		Mode:          info.Mode,
		WidthPx:       info.Width,
		HeightPx:      info.Height,
		DPIX:          types.NotSpecified,
		DPIY:          types.NotSpecified,
		FileSizeBytes: len(data),
		FileSizeMB:    FileSizeMB(len(data)),
	}

	if dpiX, dpiY, ok := info.DPI(); ok && dpiX > 0 && dpiY > 0 {
		resp.DPIX = dpiX
		resp.DPIY = dpiY

		widthIn := round2(float64(info.Width) / dpiX)
		heightIn := round2(float64(info.Height) / dpiY)
		widthMM := round2(widthIn * 25.4)
		heightMM := round2(heightIn * 25.4)

		resp.WidthInches = &widthIn
		resp.HeightInches = &heightIn
		resp.WidthMM = &widthMM
		resp.HeightMM = &heightMM
	}

	if info.Format == imageinfo.FormatPNG {
		resp.PNGMetadata = buildPNGMetadata(info.Meta)
	}

	return resp, nil
}

func buildPNGMetadata(meta map[string]any) *types.PNGMetadata {
	md := &types.PNGMetadata{}

	if v, ok := lookup(meta, imageinfo.KeyGamma); ok {
		md.Gamma = v
	}
	if v, ok := lookup(meta, imageinfo.KeyTransparency); ok {
		md.Transparency = v
	}
	if v, ok := lookup(meta, imageinfo.KeyICCProfile); ok {
		p := binaryPlaceholder(v)
		md.ICCProfile = &p
	}
	if v, ok := lookup(meta, imageinfo.KeyEXIF); ok {
		p := binaryPlaceholder(v)
		md.EXIF = &p
	}
	if v, ok := lookup(meta, "description"); ok {
		md.Description = v
	}
	if v, ok := lookup(meta, "software"); ok {
		md.Software = v
	}

	return md
}

// lookup matches keys exactly. Text keywords are case-sensitive in PNG, so a
// "Description" chunk is not the allow-listed "description".
func lookup(meta map[string]any, key string) (any, bool) {
	v, ok := meta[key]
	return v, ok
}

// binaryPlaceholder reports a binary field without its content. The size is
// the length of the value's printable byte-string form, not its raw length;
// existing clients compare against that figure.
func binaryPlaceholder(v any) string {
	var n int
	switch b := v.(type) {
	case []byte:
		n = byteStringReprLen(b)
	default:
		n = len(fmt.Sprint(v))
	}
	return fmt.Sprintf("Present (%d bytes)", n)
}

// byteStringReprLen is the length of b written as a b'...' literal with
// \xNN escapes for non-printable bytes.
func byteStringReprLen(b []byte) int {
	quote := byte('\'')
	hasSingle, hasDouble := false, false
	for _, c := range b {
		switch c {
		case '\'':
			hasSingle = true
		case '"':
			hasDouble = true
		}
	}
	if hasSingle && !hasDouble {
		quote = '"'
	}

	n := 3 // b + quotes
	for _, c := range b {
		switch {
		case c == quote, c == '\\', c == '\t', c == '\n', c == '\r':
			n += 2
		case c < 0x20 || c >= 0x7F:
			n += 4
		default:
			n++
		}
	}
	return n
}

// FileSizeMB converts a byte count to mebibytes with two decimals.
func FileSizeMB(size int) float64 {
	return round2(float64(size) / bytesPerMB)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
