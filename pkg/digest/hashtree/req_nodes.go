package hashtree

import (
	"math"
	"math/bits"
)

// ReqNodes returns the number of nodes that need to be retained to hash
// a stream consisting of at most maximumBlocks blocks, while permitting
// 2^maximumStorageLevels subtrees of the same height at the root.
//
// The first term is the number of nodes needed for a stack of complete
// subtrees of distinct heights, which corresponds to the number of bits
// in the block count. The second term bounds the number of additional
// subtrees that may share the height of the leftmost subtree.
func ReqNodes(maximumBlocks uint64, maximumStorageLevels int) uint64 {
	var heights uint64
	if maximumBlocks == math.MaxUint64 {
		heights = 64
	} else {
		heights = uint64(bits.Len64(maximumBlocks+1) - 1)
	}
	return heights + uint64(1)<<uint(maximumStorageLevels)
}
