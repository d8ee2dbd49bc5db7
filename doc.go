// Package hattrie implements a HAT-trie: a 256-way byte trie whose
// leaves are cache-conscious array hash buckets (the bucket package),
// mapping arbitrary byte-string keys to fixed-width uint64 values.
//
// A Trie starts as a single hybrid bucket spanning every possible
// leading byte. Inserting keys grows that bucket until it crosses a
// size threshold, at which point it bursts: either promoted into a
// full trie node (a pure bucket, which only ever had one possible
// leading byte to begin with) or split in two along a greedy
// histogram of leading bytes (a hybrid bucket). Lookups, inserts and
// deletes all descend the 256-way trie one byte at a time until they
// land on a bucket, and pay the array-hash-table's flat, cache-local
// cost from there rather than one more pointer-chasing trie node per
// remaining byte.
//
// Grounded on the hat-trie C library (Askitis & Sinha's cache-
// conscious array hash table under a byte trie); see
// _examples/original_source/src/hat-trie/{trie,table,hat-trie}.c.
package hattrie
