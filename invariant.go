package hattrie

import (
	"fmt"
	"os"
)

// debug mirrors trie/zft/z_fast_trie.go's init()-time DEBUG switch:
// invariant checks below cost nothing in a normal build and only run
// when a caller opts in, matching spec.md §7 ("No assertions in
// release builds on normal inputs; internal consistency assertions
// may exist for debug builds").
var debug bool

func init() {
	if os.Getenv("DEBUG") == "1" {
		debug = true
	}
}

// bug panics unconditionally; only call it from behind a debug check.
func bug(format string, args ...any) {
	panic(fmt.Sprintf("hattrie: invariant violated: %s", fmt.Sprintf(format, args...)))
}

// bugOn panics if cond holds and debug assertions are enabled,
// mirroring zfasttrie/errutil.go's BugOn.
func bugOn(cond bool, format string, args ...any) {
	if debug && cond {
		bug(format, args...)
	}
}

// checkIsTrieNode asserts n is a TRIE node (I-1/I-2 preconditions that
// consume/hattrie_find rely on).
func checkIsTrieNode(n node) {
	bugOn(!n.isTrie(), "expected a trie node, got kind=%d", n.k)
}

// checkIsLeafBucket asserts n is a pure or hybrid bucket leaf (I-1).
func checkIsLeafBucket(n node) {
	bugOn(!n.isPureBucket() && !n.isHybridBucket(),
		"expected a leaf bucket, got kind=%d", n.k)
}

// checkBucketRange asserts I-2: a pure bucket has c0==c1; a hybrid
// bucket has c0<=c1.
func checkBucketRange(n node) {
	if !debug || !n.isBucket() {
		return
	}
	b := n.bucketChild
	if n.isPureBucket() {
		bugOn(b.C0 != b.C1, "pure bucket with c0=%d != c1=%d", b.C0, b.C1)
	} else if n.isHybridBucket() {
		bugOn(b.C0 > b.C1, "hybrid bucket with c0=%d > c1=%d", b.C0, b.C1)
	}
}
