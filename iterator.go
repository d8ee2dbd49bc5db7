package hattrie

import (
	"golang.org/x/exp/slices"

	"hattrie/bucket"
)

// Iterator performs a depth-first walk of a Trie's key space using an
// explicit stack rather than recursion (spec.md §4.3), so that very
// deep tries don't consume Go call-stack frames. Children of a trie
// node are pushed onto the stack in descending byte order via
// slices.Reverse so that popping (LIFO) visits them in ascending byte
// order, matching the teacher's right-to-left push / left-to-right
// pop idiom.
//
// Consecutive edges that share the same hybrid bucket pointer
// (invariant I-5) are visited only once, on their first occurrence.
type Iterator struct {
	sorted bool

	rootNode *trieNode
	rootVal  bool

	stack  []iterTask
	prefix []byte

	bucketIt     *bucket.Iterator
	bucketPrefix []byte

	curKey []byte
	curVal *Value
	done   bool
}

// iterTask is one unit of pending work on the DFS stack: either
// "look at child idx of node n", or "pop one byte of prefix, this
// node's subtree is exhausted".
type iterTask struct {
	n         *trieNode
	idx       int
	pop       bool
	popActive bool
}

// Iterator returns a new iterator over t. If sorted is true, keys
// within each leaf bucket are visited in lexicographic order (at the
// cost of sorting each bucket's contents as it is reached); if false,
// bucket contents are visited in whatever order they are stored,
// which is cheaper but not globally ordered.
func (t *Trie) Iterator(sorted bool) *Iterator {
	it := &Iterator{sorted: sorted, rootNode: t.root, rootVal: t.root.hasVal}
	it.pushChildren(t.root, false)
	it.step()
	return it
}

func (it *Iterator) pushChildren(n *trieNode, poppable bool) {
	it.stack = append(it.stack, iterTask{pop: true, popActive: poppable})

	idxs := make([]int, 256)
	for i := range idxs {
		idxs[i] = i
	}
	slices.Reverse(idxs)
	for _, idx := range idxs {
		it.stack = append(it.stack, iterTask{n: n, idx: idx})
	}
}

// Finished reports whether the iterator has produced its last pair.
func (it *Iterator) Finished() bool { return it.done }

// Key returns the current pair's key. The returned slice must not be
// retained past the next call to Next.
func (it *Iterator) Key() []byte { return it.curKey }

// Val returns a handle to the current pair's value.
func (it *Iterator) Val() *Value { return it.curVal }

// Next advances the iterator to the following pair.
func (it *Iterator) Next() { it.step() }

func (it *Iterator) step() {
	if it.rootVal {
		it.rootVal = false
		it.curKey = nil
		it.curVal = valueFromTrieNode(&it.rootNode.value)
		return
	}

	for {
		if it.bucketIt != nil {
			if !it.bucketIt.Finished() {
				it.curKey = concatKey(it.bucketPrefix, it.bucketIt.Key())
				it.curVal = valueFromBucket(it.bucketIt.Val())
				it.bucketIt.Next()
				return
			}
			it.bucketIt = nil
		}

		if len(it.stack) == 0 {
			it.done = true
			it.curKey, it.curVal = nil, nil
			return
		}

		top := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		if top.pop {
			if top.popActive {
				it.prefix = it.prefix[:len(it.prefix)-1]
			}
			continue
		}

		child := top.n.xs[top.idx]
		if top.idx > 0 && child.isBucket() && sameLeaf(top.n.xs[top.idx-1], child) {
			continue
		}

		if child.isTrie() {
			it.prefix = append(it.prefix, byte(top.idx))
			it.pushChildren(child.trieChild, true)
			if child.trieChild.hasVal {
				it.curKey = append([]byte(nil), it.prefix...)
				it.curVal = valueFromTrieNode(&child.trieChild.value)
				return
			}
			continue
		}

		checkIsLeafBucket(child)
		prefix := it.prefix
		if child.isPureBucket() {
			prefix = append(append([]byte(nil), it.prefix...), byte(top.idx))
		}
		it.bucketPrefix = prefix
		it.bucketIt = child.bucketChild.Iterator(it.sorted)
	}
}

func sameLeaf(a, b node) bool {
	return a.isBucket() && b.isBucket() && a.bucketChild == b.bucketChild
}

func concatKey(prefix, suffix []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(suffix))
	out = append(out, prefix...)
	out = append(out, suffix...)
	return out
}
