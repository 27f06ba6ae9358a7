package huffman

import (
	"sort"

	"archiver/internal/pqueue"
	"archiver/internal/symbol"
	"archiver/internal/trie"
)

// queueItem is the priority-queue element driving tree construction:
// ordered by (weight ascending, tiebreak ascending), where tiebreak is
// the smallest symbol contained in the referenced subtree. This is the
// invariant that keeps merge order — and therefore the resulting
// archive bytes — deterministic for equal-weight subtrees.
type queueItem struct {
	weight   uint64
	tiebreak symbol.Symbol
	tree     *trie.Trie[symbol.Symbol]
}

func (a queueItem) Less(b queueItem) bool {
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	return a.tiebreak < b.tiebreak
}

// BuildTree constructs the Huffman tree for freq by repeatedly merging
// the two lowest-weight subtrees. The three control symbols always
// have non-zero frequency, so the resulting tree is never empty.
func BuildTree(freq *FrequencyTable) *trie.Trie[symbol.Symbol] {
	q := pqueue.New[queueItem]()

	for i := 0; i < symbol.AlphabetSize; i++ {
		if freq[i] == 0 {
			continue
		}
		sym := symbol.Symbol(i)
		q.Push(queueItem{weight: freq[i], tiebreak: sym, tree: trie.New(sym)})
	}

	if q.Empty() {
		return trie.Empty[symbol.Symbol]()
	}

	for q.Size() > 1 {
		a := q.Top()
		q.Pop()
		b := q.Top()
		q.Pop()

		a.tree.Merge(b.tree)

		tiebreak := a.tiebreak
		if b.tiebreak < tiebreak {
			tiebreak = b.tiebreak
		}

		q.Push(queueItem{weight: a.weight + b.weight, tiebreak: tiebreak, tree: a.tree})
	}

	top := q.Top()
	q.Pop()
	return top.tree
}

// HuffmanCode is a canonical code: the low Length bits of Code, sent
// and interpreted MSB first — bit (Length-1) is the first edge from
// the trie's root.
type HuffmanCode struct {
	Code   uint32
	Length uint8
}

// SymbolWithCode pairs a symbol with its canonical code.
type SymbolWithCode struct {
	Symbol symbol.Symbol
	Code   HuffmanCode
}

// Canonicalize derives the canonical code table for tree: it collects
// the symbols with non-zero code length (tree's leaves), limits any
// code length that overflows symbol.MaxCodeBits, sorts the result by
// (length ascending, symbol ascending), and assigns codes by the
// canonical Huffman rule (code0 = 0; each next code is prev+1, then
// shifted left whenever length grows).
func Canonicalize(tree *trie.Trie[symbol.Symbol]) []SymbolWithCode {
	leaves := tree.Leaves()

	table := make([]SymbolWithCode, len(leaves))
	for i, leaf := range leaves {
		table[i] = SymbolWithCode{Symbol: leaf.Value, Code: HuffmanCode{Length: leaf.Path.Length}}
	}

	limitLengths(table, symbol.MaxCodeBits)

	sort.Slice(table, func(i, j int) bool {
		if table[i].Code.Length != table[j].Code.Length {
			return table[i].Code.Length < table[j].Code.Length
		}
		return table[i].Symbol < table[j].Symbol
	})

	var code uint32
	var prevLength uint8
	for i := range table {
		length := table[i].Code.Length
		if i > 0 {
			code = (code + 1) << (length - prevLength)
		}
		table[i].Code.Code = code
		prevLength = length
	}

	return table
}

// limitLengths caps every entry's code length at maxLength, rebalancing
// the length histogram so the result still satisfies the Kraft
// inequality (sum of 2^-length over all entries <= 1) and therefore
// still decodes as a valid prefix code. A plain Huffman merge can drive
// a rarely-used symbol's code length arbitrarily deep — a caterpillar
// tree over a handful of sharply skewed frequencies comfortably exceeds
// nine bits — so this runs unconditionally after every tree build
// rather than only on overflow.
//
// The rebalancing is the standard trick used by DEFLATE-style codecs:
// first cap every overlong code down to maxLength, then pay down the
// resulting Kraft excess by repeatedly taking one of the longest codes
// still shorter than the limit and lengthening it by one bit, compensating by folding
// one of the now-redundant maxLength codes into it so the total symbol
// count is unchanged. Each such step reduces the Kraft excess, measured
// in units of 2^-maxLength, by exactly one, so the loop always
// terminates. It is always solvable here because the codec's entire
// alphabet (symbol.AlphabetSize symbols) is no larger than
// 2^symbol.MaxCodeBits, so the Kraft budget at the limit can always
// accommodate every symbol.
func limitLengths(table []SymbolWithCode, maxLength uint8) {
	maxFound := uint8(0)
	for _, entry := range table {
		if entry.Code.Length > maxFound {
			maxFound = entry.Code.Length
		}
	}
	if maxFound <= maxLength {
		return
	}

	counts := make([]int, maxFound+1) // counts[length] = number of entries at that length
	for _, entry := range table {
		counts[entry.Code.Length]++
	}

	for length := int(maxFound); length > int(maxLength); length-- {
		counts[maxLength] += counts[length]
		counts[length] = 0
	}
	counts = counts[:maxLength+1]

	excess := -(1 << maxLength)
	for length := 1; length <= int(maxLength); length++ {
		excess += counts[length] << (int(maxLength) - length)
	}

	for excess > 0 {
		length := int(maxLength) - 1
		for counts[length] == 0 {
			length--
		}
		counts[length]--
		counts[length+1] += 2
		counts[maxLength]--
		excess--
	}

	// Re-derive per-symbol lengths from the corrected histogram: the
	// entries that originally held the longest (least frequent) codes
	// receive the longest corrected lengths, preserving the codec's
	// preference for spending more bits on rarer symbols.
	order := make([]int, len(table))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := table[order[i]], table[order[j]]
		if a.Code.Length != b.Code.Length {
			return a.Code.Length > b.Code.Length
		}
		return a.Symbol > b.Symbol
	})

	next := 0
	for length := int(maxLength); length >= 1; length-- {
		for n := 0; n < counts[length]; n++ {
			table[order[next]].Code.Length = uint8(length)
			next++
		}
	}
}
