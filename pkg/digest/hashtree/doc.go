// Package hashtree implements a streaming Merkle tree hasher.
//
// A Tree splits its input into fixed-size blocks, hashes each block
// with a leaf hash function and combines the resulting digests into a
// single root digest. Internal nodes are computed by hashing the
// concatenation of the left and right child digests with the same hash
// function that is used for the leaves. Because Tree implements
// hash.Hash itself, trees may be nested.
//
// Only a bounded number of nodes is retained while streaming. The
// nodes that are retained form a list of complete subtrees, ordered
// from the oldest (leftmost) to the newest (rightmost). Whenever the
// two rightmost subtrees have the same height, they are merged. The
// number of subtrees that may share the height of the leftmost subtree
// is bounded by 2^maximumStorageLevels. Once that bound is exceeded,
// the leftmost subtrees are merged pairwise. Small values of
// maximumStorageLevels therefore keep memory usage low, at the cost of
// producing a root that may differ from the one of a perfectly
// balanced tree.
package hashtree
