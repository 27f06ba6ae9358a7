// Package huffman implements the per-file canonical Huffman codec
// core: frequency tabulation, tree construction and canonicalisation,
// header framing, and the encode/decode orchestration that drives one
// file section of an archive.
package huffman

import (
	"fmt"

	"archiver/internal/bitio"
	"archiver/internal/symbol"
	"archiver/internal/trie"
)

// EncodeFile writes one file section: header, filename codes,
// FILE_NAME_END, body codes, and the ONE_MORE_FILE/ARCHIVE_END
// terminator. r is read twice — once (implicitly, via
// CountFrequencies) to tabulate frequencies and once, after Reset, to
// emit the body — so it must support Reset.
func EncodeFile(r *bitio.Reader, w *bitio.Writer, isLast bool) error {
	freq, err := CountFrequencies(r)
	if err != nil {
		return err
	}

	tree := BuildTree(freq)
	table := Canonicalize(tree)

	codeOf := make(map[symbol.Symbol]HuffmanCode, len(table))
	for _, entry := range table {
		codeOf[entry.Symbol] = entry.Code
	}

	if err := WriteHeader(w, table); err != nil {
		return fmt.Errorf("huffman: encode %s: %w", r.FileName(), err)
	}

	name := r.FileName()
	for i := 0; i < len(name); i++ {
		if err := writeCodeBits(w, codeOf[symbol.Byte(name[i])]); err != nil {
			return fmt.Errorf("huffman: encode %s: %w", name, err)
		}
	}
	if err := writeCodeBits(w, codeOf[symbol.FileNameEnd]); err != nil {
		return fmt.Errorf("huffman: encode %s: %w", name, err)
	}

	if err := r.Reset(); err != nil {
		return fmt.Errorf("huffman: encode %s: %w", name, err)
	}

	for r.HasNextByte() {
		b, err := r.ReadNextByte()
		if err != nil {
			return fmt.Errorf("huffman: encode %s: %w", name, err)
		}
		if err := writeCodeBits(w, codeOf[symbol.Byte(b)]); err != nil {
			return fmt.Errorf("huffman: encode %s: %w", name, err)
		}
	}

	terminator := symbol.OneMoreFile
	if isLast {
		terminator = symbol.ArchiveEnd
	}
	if err := writeCodeBits(w, codeOf[terminator]); err != nil {
		return fmt.Errorf("huffman: encode %s: %w", name, err)
	}

	return nil
}

// decodeSymbol walks t one bit at a time from the root until it
// reaches a leaf, returning the leaf's symbol.
func decodeSymbol(r *bitio.Reader, t *trie.Trie[symbol.Symbol]) (symbol.Symbol, error) {
	tr := t.RootTraverser()

	for !tr.HasValue() {
		if !r.HasNextBit() {
			return 0, fmt.Errorf("huffman: decode symbol: %w", ErrInvalidFormat)
		}

		bit, err := r.ReadNextBit()
		if err != nil {
			return 0, fmt.Errorf("huffman: decode symbol: %w", err)
		}

		if bit {
			if !tr.CanGoRight() {
				return 0, fmt.Errorf("huffman: decode symbol: %w", ErrCorruptTrie)
			}
			tr = tr.GoRight()
		} else {
			if !tr.CanGoLeft() {
				return 0, fmt.Errorf("huffman: decode symbol: %w", ErrCorruptTrie)
			}
			tr = tr.GoLeft()
		}
	}

	return tr.Value(), nil
}

// DecodeFile reads one file section: it reconstructs the trie from
// the header, decodes the filename, opens w at that name, decodes the
// body, and closes w at the terminator. It reports whether another
// file section follows (ONE_MORE_FILE) or the archive is done
// (ARCHIVE_END).
func DecodeFile(r *bitio.Reader, w *bitio.Writer) (more bool, err error) {
	t, err := RestoreBinaryTrie(r)
	if err != nil {
		return false, err
	}

	var name []byte
	for {
		sym, err := decodeSymbol(r, t)
		if err != nil {
			return false, fmt.Errorf("huffman: decode filename: %w", err)
		}
		if sym == symbol.FileNameEnd {
			break
		}
		if sym >= 256 {
			return false, fmt.Errorf("huffman: decode filename: unexpected control symbol %d: %w", sym, ErrInvalidFormat)
		}
		name = append(name, byte(sym))
	}

	if err := w.OpenFile(string(name)); err != nil {
		return false, fmt.Errorf("huffman: decode %s: %w", name, err)
	}

	for {
		sym, err := decodeSymbol(r, t)
		if err != nil {
			return false, fmt.Errorf("huffman: decode body of %s: %w", name, err)
		}

		if sym == symbol.OneMoreFile {
			more = true
			break
		}
		if sym == symbol.ArchiveEnd {
			more = false
			break
		}
		if sym >= 256 {
			return false, fmt.Errorf("huffman: decode body of %s: unexpected control symbol %d: %w", name, sym, ErrInvalidFormat)
		}

		if err := w.WriteByte(byte(sym)); err != nil {
			return false, fmt.Errorf("huffman: decode %s: %w", name, err)
		}
	}

	if err := w.CloseFile(); err != nil {
		return false, fmt.Errorf("huffman: decode %s: %w", name, err)
	}

	return more, nil
}
