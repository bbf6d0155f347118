package hashtree

import (
	"hash"
)

// rankList is a doubly linked list of nodes, ordered from the oldest
// subtree (first) to the newest subtree (last). Ranks are
// non-increasing when traversing the list from first to last.
type rankList struct {
	pool   nodePool
	first  int
	last   int
	hasher hash.Hash

	// The number of consecutive nodes at the start of the list that
	// share the rank of the first node, and the number of such nodes
	// that may exist before the start of the list gets compacted.
	rootLevelNodes        uint64
	maximumRootLevelNodes uint64
}

func newRankList(capacity int, hasher hash.Hash, maximumStorageLevels int) rankList {
	return rankList{
		pool:                  newNodePool(capacity, hasher.Size()),
		first:                 nilNode,
		last:                  nilNode,
		hasher:                hasher,
		maximumRootLevelNodes: uint64(1) << uint(maximumStorageLevels),
	}
}

// reset returns all nodes in the list back to the pool.
func (l *rankList) reset() {
	for l.first != nilNode {
		l.unlink(l.first)
	}
	l.rootLevelNodes = 0
}

// copyFrom replaces the contents of the list with a copy of another
// list. Both lists must use pools of the same digest size.
func (l *rankList) copyFrom(other *rankList) {
	l.reset()
	for i := other.first; i != nilNode; i = other.pool.nodes[i].next {
		src := &other.pool.nodes[i]
		k := l.pool.allocate()
		copy(l.pool.nodes[k].digest, src.digest)
		l.linkLast(k, src.rank)
	}
	l.rootLevelNodes = other.rootLevelNodes
}

func (l *rankList) linkLast(k int, rank uint) {
	n := &l.pool.nodes[k]
	n.rank = rank
	n.prev = l.last
	n.next = nilNode
	if n.prev == nilNode {
		l.first = k
	} else {
		l.pool.nodes[n.prev].next = k
	}
	l.last = k
}

func (l *rankList) unlink(k int) {
	n := &l.pool.nodes[k]
	if n.prev == nilNode {
		l.first = n.next
	} else {
		l.pool.nodes[n.prev].next = n.next
	}
	if n.next == nilNode {
		l.last = n.prev
	} else {
		l.pool.nodes[n.next].prev = n.prev
	}
	l.pool.release(k)
}

// combineDiscard replaces the digest of a node with the digest of the
// concatenation of its own digest and the digest of the node following
// it. The following node is removed from the list. The rank of the
// node is left untouched.
func (l *rankList) combineDiscard(k int) {
	n := &l.pool.nodes[k]
	if n.next == nilNode {
		panic("Attempted to combine the last node of the list")
	}
	l.hasher.Reset()
	l.hasher.Write(n.digest)
	l.hasher.Write(l.pool.nodes[n.next].digest)
	copy(n.digest, l.hasher.Sum(n.digest[:0]))
	l.unlink(n.next)
}

// appendBlock hashes a block of data and appends the resulting digest
// to the end of the list as a node of rank zero.
func (l *rankList) appendBlock(data []byte) {
	k := l.pool.allocate()
	n := &l.pool.nodes[k]
	l.hasher.Reset()
	l.hasher.Write(data)
	copy(n.digest, l.hasher.Sum(n.digest[:0]))
	l.appendNode(k)
}

func (l *rankList) appendNode(k int) {
	// As long as the first node has rank zero, every new node is
	// another node at the root level.
	if l.first == nilNode || l.pool.nodes[l.first].rank == 0 {
		l.rootLevelNodes++
	}
	l.linkLast(k, 0)

	l.compactEnd()
	if l.rootLevelNodes > l.maximumRootLevelNodes {
		l.compactStart()
	}
}

// compactEnd merges the last two nodes of the list for as long as they
// have the same rank, and that rank is lower than the one of the first
// node.
func (l *rankList) compactEnd() {
	nodes := l.pool.nodes
	for {
		last := &nodes[l.last]
		if last.prev == nilNode || last.rank != nodes[last.prev].rank || last.rank >= nodes[l.first].rank {
			return
		}
		l.combineDiscard(last.prev)
		last = &nodes[l.last]
		last.rank++
		if last.rank == nodes[l.first].rank {
			// The merged node has grown to the height of the
			// first node, meaning it is now a root level node.
			l.rootLevelNodes++
		}
	}
}

// startsPair returns whether a node and the one following it both have
// a given rank.
func (l *rankList) startsPair(k int, rank uint) bool {
	if k == nilNode {
		return false
	}
	n := &l.pool.nodes[k]
	return n.rank == rank && n.next != nilNode && l.pool.nodes[n.next].rank == rank
}

// compactStart merges the root level nodes at the start of the list
// pairwise, thereby raising the rank of the root level by one.
func (l *rankList) compactStart() {
	rank := l.pool.nodes[l.first].rank
	k := l.first
	if !l.startsPair(k, rank) {
		return
	}
	l.rootLevelNodes = 0
	for l.startsPair(k, rank) {
		l.combineDiscard(k)
		l.pool.nodes[k].rank++
		l.rootLevelNodes++
		k = l.pool.nodes[k].next
	}
}

// collapse reduces the list to a single node and returns its digest.
// Adjacent nodes of equal rank are merged first, starting at the
// beginning of the list. The remaining nodes are then merged from right
// to left.
func (l *rankList) collapse() []byte {
	nodes := l.pool.nodes
	for {
		merged := false
		for k := l.first; k != nilNode && nodes[k].next != nilNode && nodes[k].rank == nodes[nodes[k].next].rank; k = nodes[k].next {
			l.combineDiscard(k)
			merged = true
		}
		if !merged {
			break
		}
	}
	for l.first != l.last {
		l.combineDiscard(nodes[l.last].prev)
	}
	return nodes[l.first].digest
}
