// Package archiver implements the archive driver: it iterates a
// sequence of input readers, delegates each to the Huffman codec core
// for one file section, marks the final section's terminator, and
// guarantees the output writer is closed on both success and failure.
package archiver

import (
	"fmt"

	"archiver/internal/bitio"
	"archiver/internal/huffman"
)

// Compress writes one archive to writer's directory under name,
// containing one Huffman-coded section per reader, in order. readers
// are consumed and closed as they are processed; writer is closed
// exactly once before Compress returns, whether or not an error
// occurred.
func Compress(readers []*bitio.Reader, writer *bitio.Writer, name string) (err error) {
	if openErr := writer.OpenFile(name); openErr != nil {
		return fmt.Errorf("archiver: compress: %w", openErr)
	}
	defer func() {
		if closeErr := writer.CloseFile(); err == nil {
			err = closeErr
		}
	}()

	for i, r := range readers {
		isLast := i == len(readers)-1
		if encErr := huffman.EncodeFile(r, writer, isLast); encErr != nil {
			return fmt.Errorf("archiver: compress %s: %w", r.FileName(), encErr)
		}
		if closeErr := r.Close(); closeErr != nil {
			return fmt.Errorf("archiver: compress %s: %w", r.FileName(), closeErr)
		}
	}

	return nil
}

// Decompress reads an archive section by section from reader, writing
// each decoded file under writer's directory, until it reaches a
// section whose terminator is ARCHIVE_END. reader is closed, and any
// file still open in writer is closed, before Decompress returns,
// whether or not an error occurred.
func Decompress(reader *bitio.Reader, writer *bitio.Writer) (err error) {
	defer func() {
		if closeErr := writer.CloseFile(); err == nil {
			err = closeErr
		}
		if closeErr := reader.Close(); err == nil {
			err = closeErr
		}
	}()

	for {
		more, decErr := huffman.DecodeFile(reader, writer)
		if decErr != nil {
			return fmt.Errorf("archiver: decompress: %w", decErr)
		}
		if !more {
			break
		}
	}

	return nil
}
