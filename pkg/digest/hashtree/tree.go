package hashtree

import (
	"hash"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MaximumStorageLevels is the highest value of maximumStorageLevels
// accepted by New(). The size of the node pool grows exponentially with
// this value.
const MaximumStorageLevels = 16

// Tree is a hash.Hash that computes the root digest of a Merkle tree
// whose leaves are the digests of fixed-size blocks of the input.
//
// The digest size of a Tree is equal to the one of its leaf hash
// function. Instances are not safe for concurrent use.
type Tree struct {
	leaf           hash.Hash
	blockSizeBytes int

	// Partially filled block of data that is not hashed yet. Its
	// capacity grows as needed, so that a large block size does not
	// cause memory to be allocated up front.
	block      []byte
	blockCount uint64

	// Subtrees of the data that has been written. Sum() operates on
	// a copy, so that it does not alter the state of the Tree.
	list  rankList
	final rankList
}

// New creates a Tree that splits its input into blocks of
// blockSizeBytes and hashes both blocks and pairs of digests using the
// provided leaf hash function. The Tree takes exclusive use of the
// leaf hash function, but does not own it in any other way.
func New(leaf hash.Hash, blockSizeBytes int, maximumStorageLevels int) (*Tree, error) {
	if leaf == nil {
		return nil, status.Error(codes.InvalidArgument, "No leaf hash function provided")
	}
	if blockSizeBytes <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Block size must be positive, while %d bytes was provided", blockSizeBytes)
	}
	if maximumStorageLevels < 0 || maximumStorageLevels > MaximumStorageLevels {
		return nil, status.Errorf(codes.InvalidArgument, "Maximum storage levels must be between 0 and %d, while %d was provided", MaximumStorageLevels, maximumStorageLevels)
	}
	if digestSizeBytes := leaf.Size(); digestSizeBytes <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Leaf hash function has an invalid digest size of %d bytes", digestSizeBytes)
	}

	// One additional node is needed, as a newly appended node
	// exists alongside the other nodes until compaction completes.
	capacity := int(ReqNodes(math.MaxUint64-1, maximumStorageLevels)) + 1
	return &Tree{
		leaf:           leaf,
		blockSizeBytes: blockSizeBytes,
		list:           newRankList(capacity, leaf, maximumStorageLevels),
		final:          newRankList(capacity, leaf, maximumStorageLevels),
	}, nil
}

// Write data into the Tree. Complete blocks are hashed immediately.
// Blocks are taken directly from the provided buffer where possible.
func (t *Tree) Write(p []byte) (int, error) {
	nWritten := len(p)
	if len(p) > 0 && len(t.block) > 0 {
		// Complete the block that was started previously.
		n := t.blockSizeBytes - len(t.block)
		if n > len(p) {
			n = len(p)
		}
		t.block = append(t.block, p[:n]...)
		p = p[n:]
		if len(t.block) == t.blockSizeBytes {
			t.list.appendBlock(t.block)
			t.blockCount++
			t.block = t.block[:0]
		}
	}
	for len(p) >= t.blockSizeBytes {
		t.list.appendBlock(p[:t.blockSizeBytes])
		t.blockCount++
		p = p[t.blockSizeBytes:]
	}
	if len(p) > 0 {
		t.block = append(t.block[:0], p...)
	}
	return nWritten, nil
}

// Sum appends the root digest of the data written so far to b. The
// final partial block, if any, is hashed as a shorter block. Hashing
// no data at all yields the leaf digest of an empty block.
func (t *Tree) Sum(b []byte) []byte {
	t.final.copyFrom(&t.list)
	if t.final.first == nilNode || len(t.block) > 0 {
		t.final.appendBlock(t.block)
	}
	return append(b, t.final.collapse()...)
}

// Reset the Tree to its initial state, discarding all data written.
func (t *Tree) Reset() {
	t.list.reset()
	t.block = t.block[:0]
	t.blockCount = 0
}

// Size returns the digest size of the leaf hash function.
func (t *Tree) Size() int {
	return t.leaf.Size()
}

// BlockSize returns the size of the blocks in which input is split.
func (t *Tree) BlockSize() int {
	return t.blockSizeBytes
}

// BlockCount returns the number of complete blocks that have been
// hashed since the Tree was created or last reset.
func (t *Tree) BlockCount() uint64 {
	return t.blockCount
}

// LiveNodes returns the number of nodes currently retained.
func (t *Tree) LiveNodes() int {
	return t.list.pool.inUse
}

// Capacity returns the number of nodes the Tree is able to retain.
func (t *Tree) Capacity() int {
	return t.list.pool.capacity()
}
