package hattrie

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"hattrie/bucket"
	"hattrie/utils"
)

// Rough, architecture-independent size estimates used by ByteSize and
// MemReport: a node edge is a kind tag plus two pointers, and a trie
// node's own fixed fields are a bool and a uint64. These are reporting
// estimates, not exact allocator accounting (spec.md §6's MemReport is
// explicitly a diagnostic, not a precise byte count).
const (
	bytesPerEdge          = 24
	trieNodeFixedOverhead = 16
)

// ByteSize estimates the trie's total memory footprint: every trie
// node's fixed overhead plus its 256-entry edge array, and every
// distinct leaf bucket's own ByteSize, each counted exactly once even
// when a hybrid bucket is shared across a range of edges (invariant
// I-5).
func (t *Trie) ByteSize() int {
	seen := make(map[*bucket.Bucket]bool)
	return t.root.byteSize(seen)
}

func (n *trieNode) byteSize(seen map[*bucket.Bucket]bool) int {
	total := trieNodeFixedOverhead + 256*bytesPerEdge
	var prev node
	for i, c := range n.xs {
		if i > 0 && c.isBucket() && sameLeaf(prev, c) {
			prev = c
			continue
		}
		switch {
		case c.isTrie():
			total += c.trieChild.byteSize(seen)
		case c.isBucket():
			if !seen[c.bucketChild] {
				seen[c.bucketChild] = true
				total += c.bucketChild.ByteSize()
			}
		}
		prev = c
	}
	return total
}

// MemReport builds a hierarchical breakdown of the trie's memory
// footprint, suitable for Print or JSON (utils.MemReport).
func (t *Trie) MemReport() utils.MemReport {
	seen := make(map[*bucket.Bucket]bool)
	return t.root.memReport(seen, "root")
}

func (n *trieNode) memReport(seen map[*bucket.Bucket]bool, name string) utils.MemReport {
	r := utils.MemReport{Name: name, TotalBytes: trieNodeFixedOverhead + 256*bytesPerEdge}

	var prev node
	for i, c := range n.xs {
		if i > 0 && c.isBucket() && sameLeaf(prev, c) {
			prev = c
			continue
		}

		switch {
		case c.isTrie():
			child := c.trieChild.memReport(seen, fmt.Sprintf("trie[0x%02x]", i))
			r.Children = append(r.Children, child)
			r.TotalBytes += child.TotalBytes
		case c.isBucket():
			if !seen[c.bucketChild] {
				seen[c.bucketChild] = true
				kind := "hybrid"
				if c.isPureBucket() {
					kind = "pure"
				}
				child := utils.MemReport{
					Name:       fmt.Sprintf("%s-bucket[0x%02x-0x%02x]", kind, c.bucketChild.C0, c.bucketChild.C1),
					TotalBytes: c.bucketChild.ByteSize(),
				}
				r.Children = append(r.Children, child)
				r.TotalBytes += child.TotalBytes
			}
		}
		prev = c
	}
	return r
}

// String summarizes the trie's key count and estimated footprint.
func (t *Trie) String() string {
	return fmt.Sprintf("hattrie: %d keys, %s", t.Size(), humanize.Bytes(uint64(t.ByteSize())))
}
