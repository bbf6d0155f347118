package hashtree

// nilNode is used in place of a node index to denote the absence of a
// node.
const nilNode = -1

// node in the Merkle tree. The rank of a node is the height of the
// complete subtree whose root digest is stored in the node. Nodes that
// correspond to a single block of data have rank zero.
type node struct {
	rank   uint
	digest []byte
	prev   int
	next   int
}

// nodePool is an arena of nodes that is allocated once. Nodes that are
// not in use are chained together through their next field, so that
// allocating and releasing nodes never causes memory to be allocated.
type nodePool struct {
	nodes []node
	free  int
	inUse int

	// Highest value of inUse observed since creation.
	peakInUse int
}

func newNodePool(capacity int, digestSizeBytes int) nodePool {
	digests := make([]byte, capacity*digestSizeBytes)
	nodes := make([]node, capacity)
	for i := range nodes {
		start, end := i*digestSizeBytes, (i+1)*digestSizeBytes
		nodes[i] = node{
			digest: digests[start:end:end],
			prev:   nilNode,
			next:   i + 1,
		}
	}
	nodes[capacity-1].next = nilNode
	return nodePool{
		nodes: nodes,
		free:  0,
	}
}

// allocate a node from the pool. The pool is sized such that it can
// never run out of nodes, meaning that exhaustion is a programming
// error.
func (p *nodePool) allocate() int {
	i := p.free
	if i == nilNode {
		panic("Node pool exhausted")
	}
	p.free = p.nodes[i].next
	p.inUse++
	if p.peakInUse < p.inUse {
		p.peakInUse = p.inUse
	}
	return i
}

func (p *nodePool) release(i int) {
	n := &p.nodes[i]
	n.prev = nilNode
	n.next = p.free
	p.free = i
	p.inUse--
}

func (p *nodePool) capacity() int {
	return len(p.nodes)
}
