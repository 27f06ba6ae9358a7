package huffman

import (
	"fmt"

	"archiver/internal/bitio"
	"archiver/internal/symbol"
)

// FrequencyTable counts occurrences of every coded symbol for one
// file section: the control symbols always start at 1, and the byte
// symbols reflect the filename concatenated with the file body.
type FrequencyTable [symbol.AlphabetSize]uint64

// CountFrequencies tabulates r's filename and body. r is left
// consumed; the caller must Reset it before re-reading the body for
// encoding.
func CountFrequencies(r *bitio.Reader) (*FrequencyTable, error) {
	var freq FrequencyTable

	freq[symbol.FileNameEnd] = 1
	freq[symbol.OneMoreFile] = 1
	freq[symbol.ArchiveEnd] = 1

	for i := 0; i < len(r.FileName()); i++ {
		freq[symbol.Byte(r.FileName()[i])]++
	}

	for r.HasNextByte() {
		b, err := r.ReadNextByte()
		if err != nil {
			return nil, fmt.Errorf("huffman: count frequencies: %w", err)
		}
		freq[symbol.Byte(b)]++
	}

	return &freq, nil
}
