package server

import "bytes"

// Magic prefixes of the accepted upload formats.
var (
	magicJPEG = []byte{0xff, 0xd8, 0xff}
	magicPNG  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	magicBMP  = []byte{'B', 'M'}
)

// SniffImageFormat identifies an upload by its magic bytes before any
// decoding happens. It returns the format name and whether the data looks
// like a supported image.
func SniffImageFormat(data []byte) (string, bool) {
	switch {
	case bytes.HasPrefix(data, magicPNG):
		return "png", true
	case bytes.HasPrefix(data, magicJPEG):
		return "jpeg", true
	case bytes.HasPrefix(data, magicBMP):
		return "bmp", true
	default:
		return "", false
	}
}
