package types

// NotSpecified stands in for a resolution axis the image does not declare.
const NotSpecified = "not specified"

// MetadataResponse is the document returned by POST /extract-metadata.
// DPIX and DPIY hold either a float64 or NotSpecified. The physical size
// fields are nil unless both DPI axes are known.
type MetadataResponse struct {
	Filename      string       `json:"filename"`
	Format        string       `json:"format"`
	Mode          string       `json:"mode"`
	WidthPx       int          `json:"width_px"`
	HeightPx      int          `json:"height_px"`
	DPIX          any          `json:"dpi_x"`
	DPIY          any          `json:"dpi_y"`
	FileSizeBytes int          `json:"file_size_bytes"`
	FileSizeMB    float64      `json:"file_size_mb"`
	WidthInches   *float64     `json:"width_inches,omitempty"`
	HeightInches  *float64     `json:"height_inches,omitempty"`
	WidthMM       *float64     `json:"width_mm,omitempty"`
	HeightMM      *float64     `json:"height_mm,omitempty"`
	PNGMetadata   *PNGMetadata `json:"png_metadata,omitempty"`
}

// PNGMetadata carries the allow-listed PNG ancillary fields. A nil field was
// not present in the file.
type PNGMetadata struct {
	Gamma        any     `json:"gamma,omitempty"`
	Transparency any     `json:"transparency,omitempty"`
	ICCProfile   *string `json:"icc_profile,omitempty"`
	EXIF         *string `json:"exif,omitempty"`
	Description  any     `json:"description,omitempty"`
	Software     any     `json:"software,omitempty"`
}
