package huffman

import "errors"

// ErrInvalidFormat reports that the bitstream ended before a complete
// field could be read, or that a 9-bit symbol identifier exceeded the
// alphabet.
var ErrInvalidFormat = errors.New("huffman: invalid format")

// ErrCorruptTrie reports that decoding required a trie edge that does
// not exist, or reached an unvalued node where a leaf was expected.
var ErrCorruptTrie = errors.New("huffman: corrupt trie")
