package source

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
)

// maybeInflate decompresses gzip or zlib wrapped tile bytes, detected
// by magic number, and passes everything else through unchanged. Raw
// vector tiles never start with either magic, so sniffing is safe.
func maybeInflate(data []byte) ([]byte, error) {
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("source: gzip tile: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("source: gzip tile: %w", err)
		}
		return out, nil

	case len(data) >= 2 && data[0] == 0x78 && zlibLevelByte(data[1]):
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("source: zlib tile: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("source: zlib tile: %w", err)
		}
		return out, nil
	}
	return data, nil
}

// zlibLevelByte reports whether b is a valid zlib flag byte following
// the 0x78 method byte (the four standard compression levels).
func zlibLevelByte(b byte) bool {
	return b == 0x01 || b == 0x5e || b == 0x9c || b == 0xda
}
