package hattrie

import "hattrie/bucket"

// ErrKeyTooLong is returned when a key cannot be represented by the
// bucket arena's length-prefix encoding (spec.md §7, §9). It is the
// same sentinel the bucket package returns, re-exported here so
// callers never need to import "hattrie/bucket" just to compare
// errors.
var ErrKeyTooLong = bucket.ErrKeyTooLong
