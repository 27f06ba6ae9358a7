package huffman

import (
	"fmt"

	"archiver/internal/bitio"
	"archiver/internal/symbol"
	"archiver/internal/trie"
)

// write9 emits v as a 9-bit MSB-first word.
func write9(w *bitio.Writer, v uint16) error {
	for i := int(symbol.HeaderWordBits) - 1; i >= 0; i-- {
		if err := w.WriteBit((v>>uint(i))&1 == 1); err != nil {
			return fmt.Errorf("huffman: write header word: %w", err)
		}
	}
	return nil
}

// read9 reads a 9-bit MSB-first word.
func read9(r *bitio.Reader) (uint16, error) {
	var v uint16
	for i := 0; i < int(symbol.HeaderWordBits); i++ {
		if !r.HasNextBit() {
			return 0, fmt.Errorf("huffman: read header word: %w", ErrInvalidFormat)
		}
		bit, err := r.ReadNextBit()
		if err != nil {
			return 0, fmt.Errorf("huffman: read header word: %w", err)
		}
		v <<= 1
		if bit {
			v |= 1
		}
	}
	return v, nil
}

// WriteHeader emits, in MSB-first 9-bit words: the symbol count, the
// symbols themselves in canonical order, and the run of length-counts
// covering successive lengths starting at 1.
func WriteHeader(w *bitio.Writer, table []SymbolWithCode) error {
	if err := write9(w, uint16(len(table))); err != nil {
		return err
	}

	for _, entry := range table {
		if err := write9(w, uint16(entry.Symbol)); err != nil {
			return err
		}
	}

	currentLength := uint8(1)
	count := uint16(0)

	for _, entry := range table {
		for entry.Code.Length > currentLength {
			if err := write9(w, count); err != nil {
				return err
			}
			count = 0
			currentLength++
		}
		count++
	}

	if count > 0 {
		if err := write9(w, count); err != nil {
			return err
		}
	}

	return nil
}

// writeCodeBits emits code's Length bits, MSB first.
func writeCodeBits(w *bitio.Writer, code HuffmanCode) error {
	for i := int(code.Length) - 1; i >= 0; i-- {
		if err := w.WriteBit((code.Code>>uint(i))&1 == 1); err != nil {
			return fmt.Errorf("huffman: write code: %w", err)
		}
	}
	return nil
}

// toBinaryPath converts a wire-format HuffmanCode (MSB-first: bit
// Length-1 is the first edge from the root) into the trie's BinaryPath
// convention (bit i is the i-th edge from the root), by reversing the
// low Length bits.
func toBinaryPath(code HuffmanCode) trie.BinaryPath {
	var p trie.BinaryPath
	p.Length = code.Length
	for i := uint8(0); i < code.Length; i++ {
		bit := (code.Code >> (uint(code.Length) - 1 - uint(i))) & 1
		p.Code |= uint64(bit) << i
	}
	return p
}

// RestoreBinaryTrie reconstructs the canonical code trie for one file
// section by reading its header: the symbol count, the symbols, and
// the length-count run.
func RestoreBinaryTrie(r *bitio.Reader) (*trie.Trie[symbol.Symbol], error) {
	count, err := read9(r)
	if err != nil {
		return nil, err
	}

	if int(count) > symbol.AlphabetSize {
		return nil, fmt.Errorf("huffman: header symbol count %d exceeds alphabet: %w", count, ErrInvalidFormat)
	}

	alphabet := make([]symbol.Symbol, count)
	for i := range alphabet {
		word, err := read9(r)
		if err != nil {
			return nil, err
		}
		if int(word) >= symbol.AlphabetSize {
			return nil, fmt.Errorf("huffman: symbol identifier %d exceeds alphabet: %w", word, ErrInvalidFormat)
		}
		alphabet[i] = symbol.Symbol(word)
	}

	t := trie.Empty[symbol.Symbol]()

	length := uint8(1)
	code := uint32(0)
	processed := 0

	for processed < int(count) {
		c, err := read9(r)
		if err != nil {
			return nil, err
		}

		for i := uint16(0); i < c; i++ {
			if processed >= int(count) {
				return nil, fmt.Errorf("huffman: length-count overruns symbol count: %w", ErrInvalidFormat)
			}

			path := toBinaryPath(HuffmanCode{Code: code, Length: length})
			if err := t.Insert(alphabet[processed], path); err != nil {
				return nil, fmt.Errorf("huffman: restore trie: %w", ErrCorruptTrie)
			}

			code++
			processed++
		}

		code <<= 1
		length++

		if length > symbol.MaxCodeBits && processed < int(count) {
			return nil, fmt.Errorf("huffman: header length exceeds maximum: %w", ErrInvalidFormat)
		}
	}

	return t, nil
}
